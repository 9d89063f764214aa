package theme

import "github.com/charmbracelet/lipgloss"

const (
	slate950 = lipgloss.Color("#020617")
	slate900 = lipgloss.Color("#0f172a")
	slate500 = lipgloss.Color("#64748b")
	slate200 = lipgloss.Color("#e2e8f0")
	blue300  = lipgloss.Color("#93c5fd")
	blue950  = lipgloss.Color("#172554")
	amber300 = lipgloss.Color("#fcd34d")
)

// Styles describes reusable Lip Gloss styles shared across the UI.
type Styles struct {
	Header        *lipgloss.Style
	Footer        *lipgloss.Style
	Row           *lipgloss.Style
	AltRow        *lipgloss.Style
	SelectedRow   *lipgloss.Style
	Border        *lipgloss.Style
	FocusedBorder *lipgloss.Style
	Title         *lipgloss.Style
	FocusedTitle  *lipgloss.Style
	Empty         *lipgloss.Style
	DetailKey     *lipgloss.Style
	DetailValue   *lipgloss.Style
	SearchBorder  *lipgloss.Style
	SearchText    *lipgloss.Style
	SearchHint    *lipgloss.Style
	Cursor        *lipgloss.Style
}

var defaultStyles = Styles{
	Header: ptr(
		lipgloss.NewStyle().Foreground(blue300).Bold(true),
	),
	Footer: ptr(
		lipgloss.NewStyle().Foreground(slate500),
	),
	Row: ptr(
		lipgloss.NewStyle().Foreground(slate200).Background(slate950),
	),
	AltRow: ptr(
		lipgloss.NewStyle().Foreground(slate200).Background(slate900),
	),
	SelectedRow: ptr(
		lipgloss.NewStyle().Foreground(blue300).Background(blue950).Bold(true).Reverse(true),
	),
	Border: ptr(
		lipgloss.NewStyle().Foreground(slate500),
	),
	FocusedBorder: ptr(
		lipgloss.NewStyle().Foreground(blue300),
	),
	Title: ptr(
		lipgloss.NewStyle().Foreground(slate200),
	),
	FocusedTitle: ptr(
		lipgloss.NewStyle().Foreground(blue300).Bold(true),
	),
	Empty: ptr(
		lipgloss.NewStyle().Foreground(slate500).Italic(true),
	),
	DetailKey: ptr(
		lipgloss.NewStyle().Foreground(blue300).Bold(true),
	),
	DetailValue: ptr(
		lipgloss.NewStyle().Foreground(slate200),
	),
	SearchBorder: ptr(
		lipgloss.NewStyle().Foreground(amber300),
	),
	SearchText: ptr(
		lipgloss.NewStyle().Foreground(slate200),
	),
	SearchHint: ptr(
		lipgloss.NewStyle().Foreground(slate500).Italic(true),
	),
	Cursor: ptr(
		lipgloss.NewStyle().Foreground(slate950).Background(amber300),
	),
}

// Default exposes the standard style set used across the application.
func Default() *Styles {
	return &defaultStyles
}

func ptr(style lipgloss.Style) *lipgloss.Style {
	return &style
}
