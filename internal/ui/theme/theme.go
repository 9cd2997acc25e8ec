package theme

import (
	"charm.land/lipgloss/v2"
)

// Color palette — calm, professional
var (
	Primary   = lipgloss.Color("#6366F1") // Indigo
	Secondary = lipgloss.Color("#14B8A6") // Teal
	Success   = lipgloss.Color("#22C55E") // Green
	Warning   = lipgloss.Color("#F59E0B") // Amber
	Error     = lipgloss.Color("#F43F5E") // Rose
	Text      = lipgloss.Color("#F8FAFC") // White
	TextDim   = lipgloss.Color("#94A3B8") // Slate
	Border    = lipgloss.Color("#334155") // Slate
)

// Typography
var (
	Title = lipgloss.NewStyle().
		Bold(true).
		Foreground(Primary)

	Subtitle = lipgloss.NewStyle().
			Foreground(TextDim)

	Body = lipgloss.NewStyle().
		Foreground(Text)

	Hint = lipgloss.NewStyle().
		Foreground(TextDim).
		Italic(true)

	Mentor = lipgloss.NewStyle().
		Foreground(Secondary)

	Prompt = lipgloss.NewStyle().
		Foreground(Primary).
		Bold(true)
)

// Scores and states
var (
	ScoreGood = lipgloss.NewStyle().
			Foreground(Success).
			Bold(true)

	ScoreMid = lipgloss.NewStyle().
			Foreground(Warning).
			Bold(true)

	ScoreLow = lipgloss.NewStyle().
			Foreground(Error).
			Bold(true)

	Gap = lipgloss.NewStyle().
		Foreground(Error)
)

// Card frames result blocks.
var Card = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(Border).
	Padding(1, 2)

// Score returns the style matching a 0-100 score.
func Score(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return ScoreGood
	case score >= 50:
		return ScoreMid
	default:
		return ScoreLow
	}
}
