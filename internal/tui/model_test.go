package tui

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/megancady/Space-Defense-Pilot/internal/clock"
	"github.com/megancady/Space-Defense-Pilot/internal/model"
	"github.com/megancady/Space-Defense-Pilot/internal/scheduler"
	"github.com/megancady/Space-Defense-Pilot/internal/session"
)

func newTestModel(t *testing.T, subject string) (*Model, *clock.Manual, string) {
	t.Helper()
	dir := t.TempDir()
	src := clock.NewManual(time.Date(2026, 10, 16, 10, 0, 0, 0, time.Local))
	m, err := NewModel(Options{
		Config: model.Config{
			Subject: subject,
			Levels: []model.Level{
				{Label: "100%", Probability: 1, Color: "#4aa3ff"},
				{Label: "20%", Probability: 0.2, Color: "#b983ff"},
			},
			Repeats:      1,
			RoundSeconds: 0.3,
			Practice:     true,
			ExportDir:    dir,
		},
		Scheduler: scheduler.NewWithSource(rand.NewSource(2)),
		Session:   []session.Option{session.WithRand(rand.New(rand.NewSource(1)))},
		Time:      src,
	})
	if err != nil {
		t.Fatalf("new model: %v", err)
	}
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return m, src, dir
}

func typeRunes(m *Model, s string) {
	for _, r := range s {
		m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func press(m *Model, typ tea.KeyType) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: typ})
	return cmd
}

func space(m *Model) tea.Cmd {
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	return cmd
}

// runRound feeds frames until the current round ends.
func runRound(t *testing.T, m *Model, src *clock.Manual) {
	t.Helper()
	for i := 0; i < 3000; i++ {
		src.Advance(DefaultFrameInterval)
		_, cmd := m.Update(frameMsg{})
		if m.round.Ended() {
			if cmd != nil {
				t.Fatalf("expected no further frames after round end")
			}
			return
		}
		if cmd == nil {
			t.Fatalf("expected next frame to be scheduled")
		}
	}
	t.Fatalf("round did not end")
}

func TestSubjectEntryRequiresThreeDigits(t *testing.T) {
	m, _, _ := newTestModel(t, "")
	if m.screen != screenSubject {
		t.Fatalf("expected subject screen")
	}
	typeRunes(m, "0x7")
	if got := m.input.Value(); got != "07" {
		t.Fatalf("expected non-digits dropped, got %q", got)
	}
	press(m, tea.KeyEnter)
	if m.screen != screenSubject || m.inputErr == "" {
		t.Fatalf("expected validation error for two digits")
	}
	typeRunes(m, "59")
	if got := m.input.Value(); got != "075" {
		t.Fatalf("expected input capped at three digits, got %q", got)
	}
	press(m, tea.KeyEnter)
	if m.screen != screenLeaderboard || m.sess == nil || m.sess.Subject() != "075" {
		t.Fatalf("expected session for 075 and leaderboard screen")
	}
	if !strings.Contains(m.View(), "Top Defenders") {
		t.Fatalf("expected leaderboard view")
	}
}

func TestPresetSubjectSkipsEntry(t *testing.T) {
	m, _, _ := newTestModel(t, "021")
	if m.screen != screenLeaderboard {
		t.Fatalf("expected leaderboard screen, got %d", m.screen)
	}
	if m.Init() != nil {
		t.Fatalf("expected no blink command without the entry screen")
	}
}

func TestFullSessionFlow(t *testing.T) {
	m, src, dir := newTestModel(t, "042")
	space(m)
	if m.screen != screenBriefing || !strings.Contains(m.View(), "Mission briefing") {
		t.Fatalf("expected briefing")
	}
	space(m)
	if m.screen != screenInstructions || !strings.Contains(m.View(), "begin practice") {
		t.Fatalf("expected instructions")
	}
	if cmd := space(m); cmd == nil || m.screen != screenRound {
		t.Fatalf("expected practice round to start with a frame command")
	}
	if !m.round.Spec().Practice {
		t.Fatalf("expected practice round first")
	}
	if !strings.Contains(m.View(), "Defend the planet") {
		t.Fatalf("expected field view")
	}

	f, ok := m.fieldLayout()
	if !ok {
		t.Fatalf("expected field layout")
	}
	m.Update(tea.MouseMsg{X: f.left + f.cols/2, Y: f.top + f.rows/2, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	m.Update(tea.MouseMsg{X: f.left + 1, Y: f.top + 1, Action: tea.MouseActionRelease, Button: tea.MouseButtonLeft})
	if len(m.pending) != 1 {
		t.Fatalf("expected one queued click, got %d", len(m.pending))
	}
	src.Advance(DefaultFrameInterval)
	m.Update(frameMsg{})
	if target, background := m.round.Counts(); target != 1 || background != 0 {
		t.Fatalf("expected one target click, got %d/%d", target, background)
	}

	rounds := 0
	for {
		runRound(t, m, src)
		rounds++
		if m.screen == screenFinal {
			break
		}
		if m.screen != screenBetween {
			t.Fatalf("expected between-round screen, got %d", m.screen)
		}
		if rounds == 1 && !strings.Contains(m.View(), "Practice complete") {
			t.Fatalf("expected practice complete title")
		}
		space(m)
	}
	if rounds != 3 {
		t.Fatalf("expected 3 rounds, played %d", rounds)
	}

	res := m.Result()
	if !res.Completed || res.ExportErr != nil || len(res.Summaries) != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
	if filepath.Dir(res.ExportPath) != dir {
		t.Fatalf("export written to %s, want %s", res.ExportPath, dir)
	}
	data, err := os.ReadFile(res.ExportPath)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	if string(data) != m.sess.Export() {
		t.Fatalf("export file differs from session export")
	}
	view := m.View()
	if !strings.Contains(view, "Mission complete") || !strings.Contains(view, "Data saved to") {
		t.Fatalf("unexpected final view")
	}
	if len(m.board) != 5 {
		t.Fatalf("expected 5 leaderboard rows, got %d", len(m.board))
	}
	if cmd := press(m, tea.KeyEnter); cmd == nil {
		t.Fatalf("expected quit command on final screen")
	}
}

func TestAbortExportsPartialLog(t *testing.T) {
	m, src, _ := newTestModel(t, "042")
	space(m)
	space(m)
	space(m)
	src.Advance(DefaultFrameInterval)
	m.Update(frameMsg{})
	if cmd := press(m, tea.KeyCtrlC); cmd == nil {
		t.Fatalf("expected quit command")
	}
	res := m.Result()
	if res.Completed || res.ExportPath == "" {
		t.Fatalf("expected partial export, got %+v", res)
	}
}

func TestAbortBeforeSessionWritesNothing(t *testing.T) {
	m, _, dir := newTestModel(t, "")
	press(m, tea.KeyCtrlC)
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 || m.Result().ExportPath != "" {
		t.Fatalf("expected no export without a session")
	}
}

func TestSmallTerminalShowsNotice(t *testing.T) {
	m, _, _ := newTestModel(t, "042")
	space(m)
	space(m)
	space(m)
	m.Update(tea.WindowSizeMsg{Width: 20, Height: 10})
	if !strings.Contains(m.View(), "Terminal too small") {
		t.Fatalf("expected size notice")
	}
}
