package components

import (
	"fmt"
	"strings"

	"charm.land/lipgloss/v2"

	"github.com/abhisek/pytutor/internal/ui/theme"
)

// ScoreBar displays a quiz score as a horizontal bar, optionally marking
// the pass mark.
type ScoreBar struct {
	Label   string
	Correct int
	Total   int

	// PassMark is a percentage drawn as a marker on the bar. Zero hides it.
	PassMark int

	// Width is the full rendered width including label and figures.
	Width int
}

// NewScoreBar creates a score bar.
func NewScoreBar(label string, correct, total, passMark, width int) ScoreBar {
	return ScoreBar{
		Label:    label,
		Correct:  correct,
		Total:    total,
		PassMark: passMark,
		Width:    width,
	}
}

// Fraction is the share of correct answers, or 0 for an empty quiz.
func (b ScoreBar) Fraction() float64 {
	if b.Total <= 0 {
		return 0
	}
	f := float64(b.Correct) / float64(b.Total)
	return min(max(f, 0), 1)
}

// View renders the bar.
func (b ScoreBar) View() string {
	var result string
	if b.Label != "" {
		result += theme.Body.Render(b.Label) + "  "
	}

	figures := fmt.Sprintf("  %d/%d  %d%%", b.Correct, b.Total, int(b.Fraction()*100))
	barWidth := b.Width - lipgloss.Width(result) - len(figures)
	if barWidth < 4 {
		barWidth = 4
	}

	filled := int(float64(barWidth) * b.Fraction())
	mark := -1
	if b.PassMark > 0 && b.PassMark < 100 {
		mark = barWidth * b.PassMark / 100
	}

	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case i == mark:
			bar.WriteString(theme.Caution.Render("│"))
		case i < filled:
			bar.WriteString(theme.ProgressFilled.Render("█"))
		default:
			bar.WriteString(theme.ProgressEmpty.Render("░"))
		}
	}

	return result + bar.String() + theme.Hint.UnsetItalic().Render(figures)
}
