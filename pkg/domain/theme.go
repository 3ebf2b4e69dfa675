package domain

// Theme is a subscribable topic under which articles are organized.
type Theme struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	SubscribedUsers []User `json:"subscribedUsers,omitempty"`
}

// ThemeByID returns the theme with the given id from themes.
func ThemeByID(themes []Theme, id int64) (Theme, bool) {
	for _, t := range themes {
		if t.ID == id {
			return t, true
		}
	}
	return Theme{}, false
}
