package report

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/megancady/Space-Defense-Pilot/internal/eventlog"
	"github.com/megancady/Space-Defense-Pilot/internal/game"
	"github.com/megancady/Space-Defense-Pilot/internal/model"
)

const sparkChars = " .:-=+*#%@"

// Sparkline renders a single-line ASCII sparkline for the values.
func Sparkline(values []float64) string {
	if len(values) == 0 {
		return ""
	}
	minVal := values[0]
	maxVal := values[0]
	for _, v := range values[1:] {
		if v < minVal {
			minVal = v
		}
		if v > maxVal {
			maxVal = v
		}
	}
	if math.Abs(maxVal-minVal) < 1e-9 {
		return strings.Repeat(string(sparkChars[len(sparkChars)/2]), len(values))
	}
	var b strings.Builder
	for _, v := range values {
		pos := (v - minVal) / (maxVal - minVal)
		idx := int(math.Round(pos * float64(len(sparkChars)-1)))
		if idx < 0 {
			idx = 0
		}
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		b.WriteByte(sparkChars[idx])
	}
	return b.String()
}

// RenderLevels prints a contingency set.
func RenderLevels(w io.Writer, levels []model.Level) error {
	if len(levels) == 0 {
		_, err := fmt.Fprintln(w, "No levels configured.")
		return err
	}
	headers := []string{"Label", "Type", "P(fire)", "Color"}
	rows := make([][]string, 0, len(levels))
	for _, lvl := range levels {
		rows = append(rows, []string{
			lvl.Label,
			game.TrialType(lvl.Label),
			fmt.Sprintf("%.2f", lvl.Probability),
			lvl.Color,
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{2: true}))
}

// RenderPlan prints the rounds of a session plan in order.
func RenderPlan(w io.Writer, plan []model.RoundSpec) error {
	if len(plan) == 0 {
		_, err := fmt.Fprintln(w, "No rounds planned.")
		return err
	}
	headers := []string{"Trial", "Type", "P(fire)", "Color", "Seconds", "Practice"}
	rows := make([][]string, 0, len(plan))
	for _, spec := range plan {
		practice := ""
		if spec.Practice {
			practice = "yes"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", spec.Index),
			game.TrialType(spec.Label),
			fmt.Sprintf("%.2f", spec.Probability),
			spec.Color,
			fmt.Sprintf("%g", spec.Duration.Seconds()),
			practice,
		})
	}
	return writeLines(w, formatTable(headers, rows, map[int]bool{0: true, 2: true, 4: true}))
}

// RenderSummaries prints one line per round followed by the score trend.
func RenderSummaries(w io.Writer, sums []eventlog.RoundSummary) error {
	if len(sums) == 0 {
		_, err := fmt.Fprintln(w, "No rounds played.")
		return err
	}
	headers := []string{"Trial", "Type", "Target", "Background", "Fired", "Destroyed", "Crashed", "Score"}
	rows := make([][]string, 0, len(sums))
	scores := make([]float64, 0, len(sums))
	for _, s := range sums {
		trial := fmt.Sprintf("%d", s.TrialNum)
		if s.Practice {
			trial += "p"
		}
		if !s.Complete {
			trial += "*"
		}
		rows = append(rows, []string{
			trial,
			s.TrialType,
			fmt.Sprintf("%d", s.TargetClicks),
			fmt.Sprintf("%d", s.BackgroundClicks),
			fmt.Sprintf("%d", s.Fired),
			fmt.Sprintf("%d", s.Destroyed),
			fmt.Sprintf("%d", s.Crashed),
			fmt.Sprintf("%d", s.ScoreEnd),
		})
		scores = append(scores, float64(s.ScoreEnd))
	}
	right := map[int]bool{0: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true}
	lines := formatTable(headers, rows, right)
	lines = append(lines, "", "Score trend: "+Sparkline(scores))
	return writeLines(w, lines)
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}
