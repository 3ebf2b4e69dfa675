package domain

import (
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field length rules shared by the login, register, profile and article forms.
const (
	MinUsernameLen = 3
	MinPasswordLen = 8
	MinTitleLen    = 3
	MinContentLen  = 10
	MaxEmailLen    = 50
)

// FieldError reports a single invalid form field.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

// FieldOf returns the name of the first invalid field in err, or "".
func FieldOf(err error) string {
	var fe *FieldError
	if errors.As(err, &fe) {
		return fe.Field
	}
	return ""
}

func minLen(field, value string, n int) error {
	if strings.TrimSpace(value) == "" {
		return &FieldError{Field: field, Reason: "required"}
	}
	if utf8.RuneCountInString(value) < n {
		return &FieldError{Field: field, Reason: fmt.Sprintf("must be at least %d characters", n)}
	}
	return nil
}

// ValidateEmail checks that email is a bare address (no display name).
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return &FieldError{Field: "email", Reason: "required"}
	}
	if len(email) > MaxEmailLen {
		return &FieldError{Field: "email", Reason: fmt.Sprintf("must be at most %d characters", MaxEmailLen)}
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return &FieldError{Field: "email", Reason: "invalid address"}
	}
	return nil
}

// ValidatePassword enforces the server's password policy: at least
// MinPasswordLen characters with a digit, a lower-case and an upper-case letter.
func ValidatePassword(password string) error {
	if err := minLen("password", password, MinPasswordLen); err != nil {
		return err
	}
	var digit, lower, upper bool
	for _, r := range password {
		switch {
		case unicode.IsDigit(r):
			digit = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		}
	}
	if !digit || !lower || !upper {
		return &FieldError{Field: "password", Reason: "needs a digit, a lower-case and an upper-case letter"}
	}
	return nil
}

// ValidateLogin checks the login form. The password is only length-checked:
// older accounts may predate the stricter policy.
func ValidateLogin(identifier, password string) error {
	if err := minLen("identifier", identifier, MinUsernameLen); err != nil {
		return err
	}
	return minLen("password", password, MinPasswordLen)
}

// ValidateRegistration checks the sign-up form.
func ValidateRegistration(username, email, password string) error {
	if err := minLen("username", username, MinUsernameLen); err != nil {
		return err
	}
	if err := ValidateEmail(email); err != nil {
		return err
	}
	return ValidatePassword(password)
}

// ValidateProfile checks the profile edit form.
func ValidateProfile(username, email string) error {
	if err := minLen("username", username, MinUsernameLen); err != nil {
		return err
	}
	return ValidateEmail(email)
}

// ValidateArticle checks the new article form.
func ValidateArticle(themeID int64, title, content string) error {
	if themeID <= 0 {
		return &FieldError{Field: "theme", Reason: "required"}
	}
	if err := minLen("title", title, MinTitleLen); err != nil {
		return err
	}
	return minLen("content", content, MinContentLen)
}

// ValidateComment checks a comment body.
func ValidateComment(content string) error {
	if strings.TrimSpace(content) == "" {
		return &FieldError{Field: "content", Reason: "required"}
	}
	return nil
}
