package tui

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Shimmer animation for the home banner.
type shimmerTickMsg time.Time

func shimmerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return shimmerTickMsg(t)
	})
}

// renderShimmer renders text as a wave of light flowing left to right,
// deep teal (#123a3a) to bright cyan (#5eead4). Spaces are kept as gaps.
func renderShimmer(text string, frame int) string {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return ""
	}

	var out strings.Builder
	t := float64(frame)
	for i, r := range runes {
		if r == ' ' {
			out.WriteString("   ")
			continue
		}
		x := 0.0
		if n > 1 {
			x = float64(i) / float64(n-1)
		}

		phase := t*0.1 - x*3.0
		phase += math.Sin(t*0.023) * 2.0

		b := math.Sin(phase)*0.5 + 0.5
		b = math.Pow(b, 1.3)
		b = b*0.75 + math.Sin(t*0.035)*0.12 + 0.18
		b = math.Max(0.05, math.Min(1.0, b))

		color := fmt.Sprintf("#%02X%02X%02X",
			clampByte(18+b*(94-18)),
			clampByte(58+b*(234-58)),
			clampByte(58+b*(212-58)))

		out.WriteString(lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(color)).Render(string(r)))
		if i < n-1 && runes[i+1] != ' ' {
			out.WriteString(" ")
		}
	}
	return out.String()
}

func clampByte(v float64) int {
	if v > 255 {
		return 255
	}
	if v < 0 {
		return 0
	}
	return int(v)
}

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#5eead4")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e4e4ec")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#c0c4d0"))

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	// Help bar
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#8890a0"))

	helpLabelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#505868"))

	accentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#2dd4bf"))

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ade80"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#e06060"))

	selectedRowBg = lipgloss.NewStyle().Background(lipgloss.Color("#1e1e2a"))

	sectionHeaderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#606878")).
				Bold(true)

	commentTextStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#a0a4b0"))

	inputPromptStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#2dd4bf")).
				Bold(true)

	inputPlaceholderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#343c4a"))

	// Theme colors rotate by id so a theme keeps its color everywhere.
	themeColors = []lipgloss.Color{
		lipgloss.Color("#e06060"),
		lipgloss.Color("#b080d0"),
		lipgloss.Color("#f0944a"),
		lipgloss.Color("#d4a844"),
		lipgloss.Color("#60a0e0"),
		lipgloss.Color("#3ecce4"),
		lipgloss.Color("#c084e0"),
	}
)

// ThemeStyle returns a bold style colored for the given theme id.
func ThemeStyle(id int64) lipgloss.Style {
	if id <= 0 {
		return lipgloss.NewStyle().Foreground(lipgloss.Color("#606878")).Bold(true)
	}
	return lipgloss.NewStyle().Foreground(themeColors[int(id)%len(themeColors)]).Bold(true)
}

func helpEntry(key, label string) string {
	return helpKeyStyle.Render(key) + " " + helpLabelStyle.Render(label)
}

func helpEntries(pairs ...string) string {
	parts := make([]string, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		parts = append(parts, helpEntry(pairs[i], pairs[i+1]))
	}
	return strings.Join(parts, "  ")
}
