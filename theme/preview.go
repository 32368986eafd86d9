package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Preview renders a swatch line per token using lipgloss. Terminals without
// color support still get the names and hex values.
func Preview(th Theme, tk Tokens) string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color(th.Colors.Text)).
		Background(lipgloss.Color(th.Colors.Bg)).
		Padding(0, 1).
		Render(fmt.Sprintf("%s theme", th.Scheme))

	width := 0
	entries := tk.Entries()
	for _, entry := range entries {
		if len(entry.Name) > width {
			width = len(entry.Name)
		}
	}

	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	for _, entry := range entries {
		swatch := lipgloss.NewStyle().
			Background(lipgloss.Color(entry.Value)).
			Render("    ")
		fmt.Fprintf(&b, "%s %-*s %s\n", swatch, width, entry.Name, entry.Value)
	}
	return b.String()
}
