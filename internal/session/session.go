// Package session runs the rounds of one subject's session in order and
// owns the state they share: clock, event log and score.
package session

import (
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/megancady/Space-Defense-Pilot/internal/clock"
	"github.com/megancady/Space-Defense-Pilot/internal/eventlog"
	"github.com/megancady/Space-Defense-Pilot/internal/game"
	"github.com/megancady/Space-Defense-Pilot/internal/model"
	"github.com/megancady/Space-Defense-Pilot/internal/scheduler"
)

// PracticeLabel is the label of the warm-up round.
const PracticeLabel = "PRACTICE_100%"

// PracticeColor is the core colour of the warm-up round.
const PracticeColor = "#4aa3ff"

// ErrRoundInProgress is returned when a round is started before the previous
// one ended.
var ErrRoundInProgress = errors.New("round in progress")

// Session holds the plan and shared state for one subject.
type Session struct {
	subject string
	params  game.Params
	rnd     game.Rand
	plan    []model.RoundSpec

	clock  clock.Clock
	log    eventlog.Log
	ledger game.Ledger

	next    int
	current *game.Round
	token   string
}

// Option customizes a Session.
type Option func(*Session)

// WithParams overrides the round constants.
func WithParams(p game.Params) Option {
	return func(s *Session) { s.params = p }
}

// WithRand sets the random source used by every round.
func WithRand(r game.Rand) Option {
	return func(s *Session) { s.rnd = r }
}

// New builds a session: an optional practice round followed by the
// scheduled rounds produced by sched.
func New(cfg model.Config, sched *scheduler.Scheduler, opts ...Option) (*Session, error) {
	order, err := sched.Build(cfg.Levels, cfg.Repeats)
	if err != nil {
		return nil, fmt.Errorf("failed to build schedule: %w", err)
	}
	s := &Session{
		subject: cfg.Subject,
		params:  game.DefaultParams(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rnd == nil {
		s.rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	duration := cfg.RoundDuration()
	if cfg.Practice {
		s.plan = append(s.plan, model.RoundSpec{
			RoundConfig: model.RoundConfig{Label: PracticeLabel, Probability: 1.0, Color: PracticeColor},
			Index:       0,
			Practice:    true,
			Duration:    duration,
		})
	}
	for i, rc := range order {
		s.plan = append(s.plan, model.RoundSpec{
			RoundConfig: rc,
			Index:       i + 1,
			Duration:    duration,
		})
	}
	return s, nil
}

// Subject returns the subject identifier.
func (s *Session) Subject() string { return s.subject }

// Plan returns the ordered round specs.
func (s *Session) Plan() []model.RoundSpec {
	return append([]model.RoundSpec(nil), s.plan...)
}

// Scheduled returns the number of non-practice rounds.
func (s *Session) Scheduled() int {
	n := 0
	for _, spec := range s.plan {
		if !spec.Practice {
			n++
		}
	}
	return n
}

// Remaining returns how many rounds have not been started.
func (s *Session) Remaining() int { return len(s.plan) - s.next }

// Done reports whether every round has run to its end.
func (s *Session) Done() bool {
	return s.next >= len(s.plan) && (s.current == nil || s.current.Ended())
}

// Current returns the round most recently started, or nil.
func (s *Session) Current() *game.Round { return s.current }

// Score returns the session score.
func (s *Session) Score() int { return s.ledger.Total() }

// Log returns the session event log.
func (s *Session) Log() *eventlog.Log { return &s.log }

// Clock returns the session clock.
func (s *Session) Clock() *clock.Clock { return &s.clock }

// StartNext creates and starts the next round at now. It returns nil and no
// error when the plan is exhausted.
func (s *Session) StartNext(now time.Time) (*game.Round, error) {
	if s.current != nil && !s.current.Ended() {
		return nil, ErrRoundInProgress
	}
	if s.next >= len(s.plan) {
		return nil, nil
	}
	spec := s.plan[s.next]
	s.next++
	deps := game.Deps{Clock: &s.clock, Log: &s.log, Ledger: &s.ledger, Rand: s.rnd}
	s.current = game.NewRound(deps, s.params, spec, s.subject)
	s.current.Start(now)
	return s.current, nil
}

// Export returns the serialized event log.
func (s *Session) Export() string {
	return s.log.Serialize()
}

// SuggestedFilename returns the export file name. The uniqueness token is
// generated once per session.
func (s *Session) SuggestedFilename() string {
	if s.token == "" {
		s.token = newToken()
	}
	return eventlog.Filename(s.subject, s.token)
}

// WriteExport writes the export to dir and returns the file path.
func (s *Session) WriteExport(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}
	path := filepath.Join(dir, s.SuggestedFilename())
	tmpFile, err := os.CreateTemp(dir, "export-*.csv")
	if err != nil {
		return "", fmt.Errorf("failed to create temp export: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()
	if _, err := s.log.WriteTo(tmpFile); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return "", fmt.Errorf("failed to close export: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return "", fmt.Errorf("failed to write export: %w", err)
	}
	return path, nil
}

func newToken() string {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Sprintf("%d", time.Now().UnixMilli())
	}
	return id.String()
}
