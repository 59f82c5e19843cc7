package eventlog

import (
	"fmt"
	"strings"
)

// Opt returns a pointer to v for populating optional row fields.
func Opt[T any](v T) *T {
	return &v
}

// RoundSummary condenses one trial_start..trial_end span of the log.
type RoundSummary struct {
	TrialNum         int
	TrialType        string
	TrialColor       string
	Probability      float64
	Practice         bool
	TargetClicks     int
	BackgroundClicks int
	Fired            int
	Destroyed        int
	Crashed          int
	ScoreStart       int
	ScoreEnd         int
	Complete         bool
}

// Summaries returns one summary per started round in log order. A round
// without a trial_end row is reported with Complete false.
func (l *Log) Summaries() []RoundSummary {
	var out []RoundSummary
	var cur *RoundSummary
	for _, row := range l.rows {
		switch row.Kind {
		case TrialStart:
			if cur != nil {
				out = append(out, *cur)
			}
			cur = &RoundSummary{
				TrialNum:   row.TrialNum,
				TrialType:  row.TrialType,
				TrialColor: row.TrialColor,
				ScoreStart: row.ScoreTotal,
				ScoreEnd:   row.ScoreTotal,
			}
			if row.Probability != nil {
				cur.Probability = *row.Probability
			}
			if row.Practice != nil {
				cur.Practice = *row.Practice
			}
			continue
		}
		if cur == nil {
			continue
		}
		cur.TargetClicks = row.TargetClickNum
		cur.BackgroundClicks = row.BackgroundClickNum
		cur.ScoreEnd = row.ScoreTotal
		switch row.Kind {
		case TargetClick:
			if row.Fired != nil && *row.Fired {
				cur.Fired++
			}
		case ShipDestroy:
			cur.Destroyed++
		case ShipCrash:
			cur.Crashed++
		case TrialEnd:
			cur.Complete = true
			out = append(out, *cur)
			cur = nil
		}
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}

// Filename suggests an export file name for subject. An empty subject is
// written as NA.
func Filename(subject, token string) string {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		subject = "NA"
	}
	return fmt.Sprintf("space_defense_%s_%s.csv", sanitize(subject), token)
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return '_'
		}
		return r
	}, s)
}
