package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

func printHelp(w io.Writer) {
	title := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#2dd4bf")).
		Bold(true).
		Render("M D D")

	tagline := lipgloss.NewStyle().
		Foreground(lipgloss.Color("245")).
		Italic(true).
		Render("Articles and comments from the themes you follow.")

	cmdStyle := lipgloss.NewStyle().Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	commands := []struct{ cmd, desc string }{
		{"mdd", "Open the interactive client"},
		{"mdd login", "Log in with username or email"},
		{"mdd register", "Create an account"},
		{"mdd logout", "Forget the stored token"},
		{"mdd status", "Show who is logged in"},
		{"mdd --version", "Show version"},
		{"mdd help", "You are here"},
	}

	fmt.Fprintf(w, "\n  %s\n\n  %s\n\n  Commands:\n", title, tagline)
	for _, c := range commands {
		fmt.Fprintf(w, "    %s  %s\n", cmdStyle.Render(fmt.Sprintf("%-16s", c.cmd)), descStyle.Render(c.desc))
	}
	env := descStyle.Render("Settings: ~/.config/mdd/config.toml, .env or MDD_* variables (MDD_API_URL, MDD_LOG_LEVEL).")
	fmt.Fprintf(w, "\n  %s\n\n", env)
}
