package domain

// User represents a registered member of the platform.
// Password is only ever sent (registration); the API never returns it.
type User struct {
	ID               int64   `json:"id"`
	Username         string  `json:"username"`
	Email            string  `json:"email"`
	Password         string  `json:"password,omitempty"`
	SubscribedThemes []Theme `json:"subscribedThemes"`
}

// SubscribedThemeIDs returns the ids of the user's subscriptions in the
// order the API returned them.
func (u *User) SubscribedThemeIDs() []int64 {
	if u == nil {
		return nil
	}
	ids := make([]int64, 0, len(u.SubscribedThemes))
	for _, t := range u.SubscribedThemes {
		ids = append(ids, t.ID)
	}
	return ids
}

// IsSubscribed reports whether the user follows the theme with the given id.
func (u *User) IsSubscribed(themeID int64) bool {
	if u == nil {
		return false
	}
	for _, t := range u.SubscribedThemes {
		if t.ID == themeID {
			return true
		}
	}
	return false
}
