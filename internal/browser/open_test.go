package browser

import "testing"

func TestArticleURL(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"http://localhost:4200", "http://localhost:4200/article/12"},
		{"https://mdd.example.com/", "https://mdd.example.com/article/12"},
	}
	for _, tc := range tests {
		if got := ArticleURL(tc.base, 12); got != tc.want {
			t.Errorf("ArticleURL(%q) = %q, want %q", tc.base, got, tc.want)
		}
	}
}

func TestOpenRejectsNonHTTP(t *testing.T) {
	for _, raw := range []string{"file:///etc/passwd", "javascript:alert(1)", "://bad"} {
		if err := Open(raw); err == nil {
			t.Errorf("Open(%q) = nil, want error", raw)
		}
	}
}
