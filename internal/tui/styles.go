package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/io7m/ironpage-sub000/internal/diag"
)

// Color palette - keeping it minimal and accessible.
var (
	ColorPrimary = lipgloss.Color("39")  // Blue
	ColorSuccess = lipgloss.Color("34")  // Green
	ColorWarning = lipgloss.Color("214") // Orange
	ColorError   = lipgloss.Color("196") // Red
	ColorMuted   = lipgloss.Color("240") // Dark gray
)

var (
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ColorError).
			Bold(true)

	WarningStyle = lipgloss.NewStyle().
			Foreground(ColorWarning)

	MutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	SpinnerStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary)
)

// Symbols for visual feedback.
const (
	SymbolCheck   = "✓"
	SymbolCross   = "✗"
	SymbolWarning = "!"
	SymbolBullet  = "•"
)

// SeverityStyle picks the style for a diagnostic severity.
func SeverityStyle(s diag.Severity) lipgloss.Style {
	if s == diag.SeverityError {
		return ErrorStyle
	}
	return WarningStyle
}

// SeveritySymbol picks the marker printed before a diagnostic.
func SeveritySymbol(s diag.Severity) string {
	if s == diag.SeverityError {
		return SymbolCross
	}
	return SymbolWarning
}
