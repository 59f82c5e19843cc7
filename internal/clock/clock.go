// Package clock anchors the session time origin and formats elapsed time.
package clock

import (
	"fmt"
	"math"
	"time"
)

// TimeSource supplies monotonic time samples.
type TimeSource interface {
	Now() time.Time
}

// System reads the real clock. time.Now carries a monotonic reading, so
// differences between samples are immune to wall clock adjustments.
type System struct{}

// Now returns the current time.
func (System) Now() time.Time {
	return time.Now()
}

// Clock is the session clock. The zero value is ready to use and not started.
type Clock struct {
	start   time.Time
	date    string
	started bool
}

// Init captures the session origin. Calls after the first are no-ops.
func (c *Clock) Init(now time.Time) {
	if c.started {
		return
	}
	c.start = now
	c.date = now.Format("2006-01-02")
	c.started = true
}

// Started reports whether Init has run.
func (c *Clock) Started() bool {
	return c.started
}

// Start returns the session origin.
func (c *Clock) Start() time.Time {
	return c.start
}

// Date returns the local calendar date of the origin as YYYY-MM-DD.
func (c *Clock) Date() string {
	return c.date
}

// Since returns the elapsed session time at now.
func (c *Clock) Since(now time.Time) time.Duration {
	if !c.started {
		return 0
	}
	return now.Sub(c.start)
}

// Stamp formats the elapsed session time at now.
func (c *Clock) Stamp(now time.Time) string {
	return Format(c.Since(now))
}

// Format renders elapsed as H:MM:SS.ffffff, rounded to the microsecond.
func Format(elapsed time.Duration) string {
	if elapsed < 0 {
		elapsed = 0
	}
	return formatMicros(int64(elapsed.Round(time.Microsecond) / time.Microsecond))
}

// FormatMillis is Format for fractional milliseconds.
func FormatMillis(ms float64) string {
	if math.IsNaN(ms) || ms < 0 {
		ms = 0
	}
	return formatMicros(int64(math.Floor(ms*1000 + 0.5)))
}

func formatMicros(total int64) string {
	micros := total % 1_000_000
	secs := total / 1_000_000
	s := secs % 60
	mins := secs / 60
	m := mins % 60
	h := mins / 60
	return fmt.Sprintf("%d:%02d:%02d.%06d", h, m, s, micros)
}
