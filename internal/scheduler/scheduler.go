// Package scheduler builds randomized round orders with no immediate repeats.
package scheduler

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/megancady/Space-Defense-Pilot/internal/model"
)

// DefaultMaxAttempts bounds shuffle-and-repair retries before the
// deterministic arrangement takes over.
const DefaultMaxAttempts = 64

var (
	// ErrNoLevels is returned when no levels are configured.
	ErrNoLevels = errors.New("no levels configured")
	// ErrRepeats is returned for a repeat count below one.
	ErrRepeats = errors.New("repeats must be >= 1")
	// ErrTooFewLabels is returned when fewer than two distinct labels exist.
	ErrTooFewLabels = errors.New("at least two distinct level labels are required")
	// ErrInfeasible is returned when one label is too frequent to separate.
	ErrInfeasible = errors.New("no order without adjacent repeats exists")
)

// Scheduler produces round orders.
type Scheduler struct {
	rnd         *rand.Rand
	MaxAttempts int

	// attempts records how many shuffles the last Build used.
	attempts int
	fallback bool
}

// New returns a Scheduler seeded with the current time.
func New() *Scheduler {
	return NewWithSource(rand.NewSource(time.Now().UnixNano()))
}

// NewWithSource returns a Scheduler drawing from src.
func NewWithSource(src rand.Source) *Scheduler {
	return &Scheduler{rnd: rand.New(src), MaxAttempts: DefaultMaxAttempts}
}

// Validate checks that levels repeated repeats times can be ordered with no
// two adjacent entries sharing a label.
func Validate(levels []model.Level, repeats int) error {
	if len(levels) == 0 {
		return ErrNoLevels
	}
	if repeats < 1 {
		return ErrRepeats
	}
	counts := map[string]int{}
	for _, lvl := range levels {
		counts[lvl.Label] += repeats
	}
	if len(counts) < 2 {
		return ErrTooFewLabels
	}
	total := len(levels) * repeats
	for label, n := range counts {
		if n > (total+1)/2 {
			return fmt.Errorf("%w: label %q appears %d times in %d rounds", ErrInfeasible, label, n, total)
		}
	}
	return nil
}

// Build replicates every level repeats times and returns them shuffled so
// that no two neighbours share a label.
func (s *Scheduler) Build(levels []model.Level, repeats int) ([]model.RoundConfig, error) {
	if err := Validate(levels, repeats); err != nil {
		return nil, err
	}
	base := make([]model.RoundConfig, 0, len(levels)*repeats)
	for r := 0; r < repeats; r++ {
		for _, lvl := range levels {
			base = append(base, model.RoundConfig{Label: lvl.Label, Probability: lvl.Probability, Color: lvl.Color})
		}
	}

	maxAttempts := s.MaxAttempts
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	s.fallback = false
	work := make([]model.RoundConfig, len(base))
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		s.attempts = attempt
		copy(work, base)
		s.shuffle(work)
		repair(work)
		if Valid(work) {
			return work, nil
		}
	}
	s.fallback = true
	return arrange(base), nil
}

// Attempts reports how many shuffles the last Build used and whether it fell
// back to the deterministic arrangement.
func (s *Scheduler) Attempts() (int, bool) {
	return s.attempts, s.fallback
}

// Valid reports whether no two adjacent entries share a label.
func Valid(order []model.RoundConfig) bool {
	for i := 1; i < len(order); i++ {
		if order[i].Label == order[i-1].Label {
			return false
		}
	}
	return true
}

func (s *Scheduler) shuffle(items []model.RoundConfig) {
	for i := len(items) - 1; i > 0; i-- {
		j := s.rnd.Intn(i + 1)
		items[i], items[j] = items[j], items[i]
	}
}

// repair makes one left-to-right pass, swapping the second of each adjacent
// duplicate with the nearest later entry of a different label.
func repair(items []model.RoundConfig) {
	for i := 1; i < len(items); i++ {
		if items[i].Label != items[i-1].Label {
			continue
		}
		for k := i + 1; k < len(items); k++ {
			if items[k].Label != items[i-1].Label {
				items[i], items[k] = items[k], items[i]
				break
			}
		}
	}
}

// arrange deals entries greedily: at every position take the label with the
// most entries left that differs from the previous one, ties broken by first
// appearance. Feasible inputs always produce a valid order.
func arrange(items []model.RoundConfig) []model.RoundConfig {
	var labels []string
	buckets := map[string][]model.RoundConfig{}
	for _, it := range items {
		if _, ok := buckets[it.Label]; !ok {
			labels = append(labels, it.Label)
		}
		buckets[it.Label] = append(buckets[it.Label], it)
	}
	out := make([]model.RoundConfig, 0, len(items))
	prev := -1
	for len(out) < len(items) {
		best := -1
		for i, label := range labels {
			if i == prev || len(buckets[label]) == 0 {
				continue
			}
			if best < 0 || len(buckets[label]) > len(buckets[labels[best]]) {
				best = i
			}
		}
		if best < 0 {
			// Only the previous label remains; Validate rules this out.
			best = prev
		}
		label := labels[best]
		out = append(out, buckets[label][0])
		buckets[label] = buckets[label][1:]
		prev = best
	}
	return out
}
