package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/navmark/internal/decorate"
)

var (
	accent = lipgloss.Color("#FF6600")

	PathStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF"))

	ActiveStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	RevealStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#32CD32"))

	DimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	HeaderStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#333333")).
			Foreground(lipgloss.Color("#FFFFFF")).
			Padding(0, 1)
)

// formatResult renders one report line for a decorated page.
func formatResult(path string, res decorate.Result) string {
	auth := DimStyle.Render("auth hidden")
	if res.AuthRevealed {
		auth = RevealStyle.Render("auth shown")
	}
	link := DimStyle.Render("no active link")
	if res.ActiveLink != "" {
		link = ActiveStyle.Render("#" + res.ActiveLink)
	}
	return fmt.Sprintf("%s  %s  %s", PathStyle.Render(path), auth, link)
}

func formatSkipped(path, contentType string) string {
	if contentType == "" {
		contentType = "unknown type"
	}
	return fmt.Sprintf("%s  %s", PathStyle.Render(path), DimStyle.Render("not html ("+contentType+"), left as is"))
}

func formatError(target string, err error) string {
	return fmt.Sprintf("%s  %s", PathStyle.Render(target), ErrorStyle.Render(err.Error()))
}
