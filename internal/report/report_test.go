package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/megancady/Space-Defense-Pilot/internal/eventlog"
	"github.com/megancady/Space-Defense-Pilot/internal/model"
)

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Trial", "Type", "Color"}
	rows := [][]string{
		{"1", "80", "#35d07f"},
		{"12", "PRACTICE", "#4aa3ff"},
	}
	lines := formatTable(headers, rows, map[int]bool{0: true})
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Trial  Type      Color" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "    1  80        #35d07f" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "   12  PRACTICE  #4aa3ff" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestSparkline(t *testing.T) {
	if got := Sparkline(nil); got != "" {
		t.Fatalf("expected empty sparkline, got %q", got)
	}
	if got := Sparkline([]float64{5, 5, 5}); got != "+++" {
		t.Fatalf("expected flat sparkline, got %q", got)
	}
	if got := Sparkline([]float64{0, 100}); got != " @" {
		t.Fatalf("expected extremes, got %q", got)
	}
}

func TestRenderLevels(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderLevels(&buf, model.DefaultLevels()); err != nil {
		t.Fatalf("render: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 7 {
		t.Fatalf("expected header plus 6 levels, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[1], "100%") || !strings.Contains(lines[1], "1.00") || !strings.Contains(lines[1], "#4aa3ff") {
		t.Fatalf("unexpected first level line: %q", lines[1])
	}
}

func TestRenderPlan(t *testing.T) {
	plan := []model.RoundSpec{
		{RoundConfig: model.RoundConfig{Label: "PRACTICE_100%", Probability: 1, Color: "#4aa3ff"}, Practice: true, Duration: 20 * time.Second},
		{RoundConfig: model.RoundConfig{Label: "80%", Probability: 0.8, Color: "#35d07f"}, Index: 1, Duration: 20 * time.Second},
	}
	var buf bytes.Buffer
	if err := RenderPlan(&buf, plan); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "yes") || !strings.Contains(out, "0.80") || !strings.Contains(out, "20") {
		t.Fatalf("unexpected plan output:\n%s", out)
	}
}

func TestRenderSummaries(t *testing.T) {
	sums := []eventlog.RoundSummary{
		{TrialNum: 0, TrialType: "100", Practice: true, TargetClicks: 9, Fired: 9, Destroyed: 1, ScoreEnd: 20, Complete: true},
		{TrialNum: 1, TrialType: "20", TargetClicks: 4, BackgroundClicks: 2, Fired: 1, Crashed: 1, ScoreEnd: 18},
	}
	var buf bytes.Buffer
	if err := RenderSummaries(&buf, sums); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "0p") || !strings.Contains(out, "1*") {
		t.Fatalf("expected practice and incomplete markers:\n%s", out)
	}
	if !strings.Contains(out, "Score trend: @ ") {
		t.Fatalf("expected score trend line:\n%s", out)
	}

	buf.Reset()
	if err := RenderSummaries(&buf, nil); err != nil || !strings.Contains(buf.String(), "No rounds") {
		t.Fatalf("expected empty notice, got %q (%v)", buf.String(), err)
	}
}
