package tui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

func TestThemeStyleRendersText(t *testing.T) {
	for _, id := range []int64{0, 1, 2, 7, 8, 1000} {
		rendered := ThemeStyle(id).Render("golang")
		if !strings.Contains(rendered, "golang") {
			t.Errorf("ThemeStyle(%d).Render = %q, want to contain text", id, rendered)
		}
	}
}

func TestThemeStyleStablePerID(t *testing.T) {
	a := ThemeStyle(3).GetForeground()
	b := ThemeStyle(3).GetForeground()
	if a != b {
		t.Errorf("ThemeStyle(3) foreground changed between calls: %v vs %v", a, b)
	}
}

func TestRenderShimmerKeepsLetters(t *testing.T) {
	for frame := 0; frame < 50; frame += 7 {
		out := renderShimmer("MDD", frame)
		for _, r := range "MDD" {
			if !strings.ContainsRune(out, r) {
				t.Fatalf("frame %d: letter %q missing from %q", frame, r, out)
			}
		}
	}
	if renderShimmer("", 3) != "" {
		t.Error("empty text should render empty")
	}
}

func TestRenderShimmerWidth(t *testing.T) {
	// Letters are spaced by one column, words by three.
	got := lipgloss.Width(renderShimmer("AB C", 0))
	if got != len("A B   C") {
		t.Errorf("width = %d, want %d", got, len("A B   C"))
	}
}

func TestClampByte(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{-5, 0},
		{0, 0},
		{127.9, 127},
		{300, 255},
	}
	for _, tc := range tests {
		if got := clampByte(tc.in); got != tc.want {
			t.Errorf("clampByte(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestHelpEntries(t *testing.T) {
	out := helpEntries("j/k", "nav", "enter", "open")
	for _, want := range []string{"j/k", "nav", "enter", "open"} {
		if !strings.Contains(out, want) {
			t.Errorf("helpEntries missing %q: %q", want, out)
		}
	}
}
