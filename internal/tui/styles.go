package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/robalobadob/idioms/apps/go-server/internal/scoring"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	phraseStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Foreground(lipgloss.Color("15")).
			Bold(true).
			Padding(0, 1)

	meaningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")).
			Italic(true)

	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	noticeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true)

	inputBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)
)

// bandStyles colours a score by its band.
var bandStyles = map[scoring.Band]lipgloss.Style{
	scoring.BandExcellent: lipgloss.NewStyle().Foreground(lipgloss.Color("34")).Bold(true), // Green
	scoring.BandGood:      lipgloss.NewStyle().Foreground(lipgloss.Color("28")),            // Dark green
	scoring.BandFair:      lipgloss.NewStyle().Foreground(lipgloss.Color("220")),           // Yellow
	scoring.BandWeak:      lipgloss.NewStyle().Foreground(lipgloss.Color("214")),           // Orange
	scoring.BandMiss:      lipgloss.NewStyle().Foreground(lipgloss.Color("196")),           // Red
}

func scoreStyle(score int) lipgloss.Style {
	return bandStyles[scoring.BandFor(score)]
}
