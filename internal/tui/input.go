package tui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// maxInputLen is the maximum number of runes allowed in form inputs.
const maxInputLen = 2000

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// insertRunes appends typed or pasted runes, clamped to maxInputLen runes.
func insertRunes(text string, runes []rune) string {
	room := maxInputLen - utf8.RuneCountInString(text)
	if room <= 0 {
		return text
	}
	if len(runes) > room {
		runes = runes[:room]
	}
	return text + string(runes)
}

// editKey applies a key message to text: runes (typed or pasted), space and
// backspace edit, everything else is ignored.
func editKey(text string, msg tea.KeyMsg) string {
	switch msg.Type {
	case tea.KeyBackspace:
		return editRune(text, "backspace")
	case tea.KeySpace:
		return insertRunes(text, []rune{' '})
	case tea.KeyRunes:
		return insertRunes(text, msg.Runes)
	}
	return text
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// renderInput renders a single-line prompt with a cursor when focused and a
// placeholder when empty.
func renderInput(input, placeholder string, focused bool) string {
	prompt := inputPromptStyle.Render("> ")
	if !focused {
		if input == "" {
			return prompt + inputPlaceholderStyle.Render(placeholder)
		}
		return prompt + dimStyle.Render(input)
	}
	return prompt + normalStyle.Render(input) + accentStyle.Render("█")
}

type formField struct {
	label     string
	value     string
	secret    bool
	multiline bool
}

// form is a vertical list of text fields with one focused field.
type form struct {
	fields []formField
	focus  int
}

func newForm(fields ...formField) form {
	return form{fields: fields}
}

func (f form) value(i int) string {
	return strings.TrimSpace(f.fields[i].value)
}

// secret returns field i untouched; surrounding spaces are part of a password.
func (f form) secret(i int) string {
	return f.fields[i].value
}

func (f *form) set(i int, v string) {
	f.fields[i].value = v
}

func (f *form) focusOn(i int) {
	if i >= 0 && i < len(f.fields) {
		f.focus = i
	}
}

// handleKey applies one keystroke and reports whether the form was submitted.
// Enter moves to the next field and submits from the last one; multiline
// fields take enter as a newline and submit with ctrl+s only.
func (f *form) handleKey(msg tea.KeyMsg) bool {
	n := len(f.fields)
	switch msg.String() {
	case "ctrl+s":
		return true
	case "tab", "down":
		f.focus = (f.focus + 1) % n
	case "shift+tab", "up":
		f.focus = (f.focus - 1 + n) % n
	case "enter":
		if f.fields[f.focus].multiline {
			f.fields[f.focus].value += "\n"
			return false
		}
		if f.focus == n-1 {
			return true
		}
		f.focus++
	default:
		fld := &f.fields[f.focus]
		fld.value = editKey(fld.value, msg)
	}
	return false
}

func (f form) view() string {
	var b strings.Builder
	for i, fld := range f.fields {
		cursor := " "
		style := metaStyle
		if i == f.focus {
			cursor = accentStyle.Render(">")
			style = selectedStyle
		}
		val := fld.value
		if fld.secret {
			val = strings.Repeat("•", utf8.RuneCountInString(val))
		}
		if i == f.focus {
			val += accentStyle.Render("█")
		}
		if fld.multiline {
			fmt.Fprintf(&b, " %s %s:\n", cursor, style.Render(fld.label))
			for _, line := range strings.Split(val, "\n") {
				fmt.Fprintf(&b, "     %s\n", line)
			}
			continue
		}
		fmt.Fprintf(&b, " %s %s: %s\n", cursor, style.Render(fld.label), val)
	}
	return b.String()
}
