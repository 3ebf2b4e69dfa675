package domain

import (
	"sort"
	"strings"
	"time"
)

// Article is a post written inside a theme.
type Article struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	CreatedAt  Timestamp `json:"createdAt"`
	UpdatedAt  Timestamp `json:"updatedAt"`
	UserID     int64     `json:"userId"`
	ThemeID    *int64    `json:"themeId"`
	AuthorName string    `json:"authorName"`
	ThemeTitle string    `json:"themeTitle"`
	Comments   []Comment `json:"comments"`
}

// Comment is a reply attached to an article.
type Comment struct {
	ID         int64  `json:"id"`
	Content    string `json:"content"`
	UserID     int64  `json:"userId"`
	AuthorName string `json:"authorName"`
	ArticleID  int64  `json:"articleId"`
}

// ArticleSort selects the ordering of an article feed.
type ArticleSort string

const (
	SortByTitle ArticleSort = "title"
	SortByDate  ArticleSort = "date"
)

// Next cycles title -> date -> title.
func (s ArticleSort) Next() ArticleSort {
	if s == SortByDate {
		return SortByTitle
	}
	return SortByDate
}

// SortArticles returns a sorted copy of articles. Title ordering is
// case-insensitive; date ordering is oldest first. Unknown modes keep the
// input order.
func SortArticles(articles []Article, by ArticleSort) []Article {
	out := make([]Article, len(articles))
	copy(out, articles)
	switch by {
	case SortByTitle:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Title) < strings.ToLower(out[j].Title)
		})
	case SortByDate:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt.Time)
		})
	}
	return out
}

// Timestamp decodes the backend's LocalDateTime values, which carry no zone
// ("2024-05-01T10:22:33.123456"), as well as RFC 3339 strings.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		t.Time = time.Time{}
		return nil
	}
	var lastErr error
	for _, layout := range timestampLayouts {
		parsed, err := time.Parse(layout, s)
		if err == nil {
			t.Time = parsed
			return nil
		}
		lastErr = err
	}
	return lastErr
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + t.Format("2006-01-02T15:04:05") + `"`), nil
}
