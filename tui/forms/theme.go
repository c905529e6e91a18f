package forms

import (
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/user/cliporama/tui/styles"
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Theme returns a huh theme that matches the TUI color palette.
func Theme() *huh.Theme {
	t := huh.ThemeBase()

	// Focused field.
	f := &t.Focused
	f.Base = f.Base.
		BorderStyle(lipgloss.ThickBorder()).
		BorderLeft(true).
		BorderForeground(styles.Focus).
		PaddingLeft(1)
	f.Title = fg(styles.Pink).Bold(true)
	f.NoteTitle = fg(styles.Cyan).Bold(true)
	f.Description = fg(styles.Muted)
	f.ErrorIndicator = fg(styles.Red).Bold(true)
	f.ErrorMessage = fg(styles.Red)
	f.SelectSelector = fg(styles.Cyan).SetString("▸ ")
	f.MultiSelectSelector = f.SelectSelector
	f.Option = fg(styles.Text)
	f.NextIndicator = fg(styles.Muted)
	f.PrevIndicator = fg(styles.Muted)
	f.SelectedOption = fg(styles.Cyan)
	f.SelectedPrefix = fg(styles.Cyan).SetString("[✓] ")
	f.UnselectedOption = fg(styles.Muted)
	f.UnselectedPrefix = fg(styles.Muted).SetString("[ ] ")
	f.TextInput.Cursor = fg(styles.Cyan)
	f.TextInput.Placeholder = fg(styles.Dim)
	f.TextInput.Prompt = fg(styles.Cyan)
	f.TextInput.Text = fg(styles.Text)
	f.FocusedButton = fg(styles.Text).Background(styles.Focus).Bold(true).Padding(0, 1)
	f.BlurredButton = fg(styles.Muted).Background(styles.Dim).Padding(0, 1)
	f.Card = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(styles.Dim).Padding(0, 1)
	f.Next = f.FocusedButton

	// Blurred field: same layout, everything dimmed.
	b := &t.Blurred
	b.Base = b.Base.
		BorderStyle(lipgloss.HiddenBorder()).
		BorderLeft(true).
		PaddingLeft(1)
	b.Title = fg(styles.Muted)
	b.NoteTitle = fg(styles.Muted)
	b.Description = fg(styles.Dim)
	b.ErrorIndicator = fg(styles.Red)
	b.ErrorMessage = fg(styles.Red)
	b.SelectSelector = lipgloss.NewStyle().SetString("  ")
	b.MultiSelectSelector = b.SelectSelector
	b.Option = fg(styles.Muted)
	b.SelectedOption = fg(styles.Muted)
	b.SelectedPrefix = fg(styles.Muted).SetString("[✓] ")
	b.UnselectedOption = fg(styles.Dim)
	b.UnselectedPrefix = fg(styles.Dim).SetString("[ ] ")
	b.TextInput.Cursor = fg(styles.Dim)
	b.TextInput.Placeholder = fg(styles.Dim)
	b.TextInput.Prompt = fg(styles.Dim)
	b.TextInput.Text = fg(styles.Muted)
	b.FocusedButton = fg(styles.Muted).Background(styles.Dim).Padding(0, 1)
	b.BlurredButton = fg(styles.Dim).Background(styles.Base).Padding(0, 1)
	b.Card = lipgloss.NewStyle().BorderStyle(lipgloss.RoundedBorder()).BorderForeground(styles.Base).Padding(0, 1)
	b.Next = b.FocusedButton

	return t
}
