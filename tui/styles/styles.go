// Package styles provides Lipgloss styles for the TUI using the Ciapre colour palette.
package styles

import "github.com/charmbracelet/lipgloss"

// Color palette - Ciapre (warm, earthy) theme from Gogh
const (
	// Base is the main background colour
	Base = lipgloss.Color("#191C27")
	// Surface is a secondary dark background
	Surface = lipgloss.Color("#181818")
	// Dim is the border and inactive colour
	Dim = lipgloss.Color("#5C4F4B")
	// Focus is used for the active stage and focused form fields
	Focus = lipgloss.Color("#724D7C")
	// Muted is secondary text
	Muted = lipgloss.Color("#AEA47A")
	// Text is the primary text colour
	Text = lipgloss.Color("#F3DBB2")
	// Pink is used for headers
	Pink = lipgloss.Color("#D33061")
	// Cyan is used for paths and URLs
	Cyan = lipgloss.Color("#3097C6")
	// Amber marks running and skipped stages
	Amber = lipgloss.Color("#CC8B3F")
	// Red marks failures
	Red = lipgloss.Color("#AC3835")
	// Green marks finished stages
	Green = lipgloss.Color("#A6A75D")
)

// Border is the style for bordered panels
var Border = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Dim)

// Header is used for section titles
var Header = lipgloss.NewStyle().
	Foreground(Pink).
	Bold(true)

// PrimaryText is the style for primary text content
var PrimaryText = lipgloss.NewStyle().
	Foreground(Text)

// SecondaryText is the style for less prominent text
var SecondaryText = lipgloss.NewStyle().
	Foreground(Muted)

// Path renders file paths and URLs
var Path = lipgloss.NewStyle().
	Foreground(Cyan)

// Running marks the stage in progress
var Running = lipgloss.NewStyle().
	Foreground(Amber).
	Bold(true)

// Warning is the style for warning messages
var Warning = lipgloss.NewStyle().
	Foreground(Red).
	Bold(true)

// Success is the style for success messages
var Success = lipgloss.NewStyle().
	Foreground(Green).
	Bold(true)

// StatusBar is the full-width top bar
var StatusBar = lipgloss.NewStyle().
	Background(Surface).
	Foreground(Text).
	Bold(true)
