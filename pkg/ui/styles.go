package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"dex-bridge/pkg/types"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorSuccess = lipgloss.Color("#10B981")
	colorWarning = lipgloss.Color("#F59E0B")
	colorError   = lipgloss.Color("#EF4444")
	colorMuted   = lipgloss.Color("#6B7280")

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(colorPrimary).
			MarginBottom(1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			MarginTop(1)

	labelStyle = lipgloss.NewStyle().
			Width(20).
			Foreground(colorMuted)

	buttonStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted)

	focusedButtonStyle = buttonStyle.
				BorderForeground(colorPrimary).
				Foreground(colorPrimary).
				Bold(true)

	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError)
	successStyle = lipgloss.NewStyle().Foreground(colorSuccess)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
)

// statusStyle colours well-known status values. Anything else is shown
// unstyled since the backend owns the vocabulary.
func statusStyle(status types.TransactionStatus) lipgloss.Style {
	switch strings.ToUpper(strings.TrimSpace(string(status))) {
	case "SUCCESS", "COMPLETED":
		return successStyle
	case "PENDING", "PROCESSING":
		return warningStyle
	case "FAILED", "REFUNDED":
		return errorStyle
	default:
		return lipgloss.NewStyle()
	}
}
