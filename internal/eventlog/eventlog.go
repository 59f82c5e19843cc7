// Package eventlog accumulates session events and serializes them to the
// tabular export format.
package eventlog

import (
	"io"
	"math"
	"strconv"
	"strings"
)

// Kind is the Event column value.
type Kind string

// Event kinds.
const (
	TrialStart      Kind = "trial_start"
	TrialEnd        Kind = "trial_end"
	TargetClick     Kind = "target_click"
	BackgroundClick Kind = "background_click"
	ShipDestroy     Kind = "ship_destroy"
	ShipCrash       Kind = "ship_crash"
)

// Columns is the export header, in order.
var Columns = []string{
	"SessionTime", "Xcord", "Ycord", "Event", "TrialTime", "TrialType",
	"TargetClickNum", "BackgroundClickNum", "TrialNum", "TrialColor",
	"Subject", "Date",
	"PointsDelta", "ScoreTotal", "Fired",
}

// Row is one logged occurrence. Nil pointer fields are unset and export empty.
type Row struct {
	SessionTime        string
	X, Y               *float64
	Kind               Kind
	TrialTime          *float64
	TrialType          string
	TargetClickNum     int
	BackgroundClickNum int
	TrialNum           int
	TrialColor         string
	Subject            string
	Date               string
	PointsDelta        *int
	ScoreTotal         int
	Fired              *bool

	// Probability and Practice are set on trial_start and trial_end rows only.
	// They are not export columns.
	Probability *float64
	Practice    *bool
}

// Fields renders the row in column order.
func (r Row) Fields() []string {
	return []string{
		r.SessionTime,
		formatCoord(r.X),
		formatCoord(r.Y),
		string(r.Kind),
		formatOptFloat(r.TrialTime),
		r.TrialType,
		strconv.Itoa(r.TargetClickNum),
		strconv.Itoa(r.BackgroundClickNum),
		strconv.Itoa(r.TrialNum),
		r.TrialColor,
		r.Subject,
		r.Date,
		formatOptInt(r.PointsDelta),
		strconv.Itoa(r.ScoreTotal),
		formatOptBool(r.Fired),
	}
}

// Log is an append-only sequence of rows.
type Log struct {
	rows []Row
}

// Append adds a row at the end of the log.
func (l *Log) Append(row Row) {
	l.rows = append(l.rows, row)
}

// Len returns the number of rows.
func (l *Log) Len() int {
	return len(l.rows)
}

// Rows returns a copy of the logged rows in append order.
func (l *Log) Rows() []Row {
	out := make([]Row, len(l.rows))
	copy(out, l.rows)
	return out
}

// Serialize renders the header and every row, newline separated, without a
// trailing newline.
func (l *Log) Serialize() string {
	var b strings.Builder
	_, _ = l.WriteTo(&b)
	return b.String()
}

// WriteTo writes the serialized log to w.
func (l *Log) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := io.WriteString(w, joinFields(Columns))
	total += int64(n)
	if err != nil {
		return total, err
	}
	for _, row := range l.rows {
		n, err = io.WriteString(w, "\n"+joinFields(row.Fields()))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func joinFields(fields []string) string {
	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(quote(f))
	}
	return b.String()
}

func quote(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

func formatCoord(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatNumber(math.Floor(*v + 0.5))
}

func formatOptFloat(v *float64) string {
	if v == nil {
		return ""
	}
	return FormatNumber(*v)
}

func formatOptInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatOptBool(v *bool) string {
	if v == nil {
		return ""
	}
	if *v {
		return "1"
	}
	return "0"
}

// FormatNumber renders v as the shortest decimal that round-trips, switching
// to exponent notation outside [1e-6, 1e21) as ECMAScript number strings do.
func FormatNumber(v float64) string {
	if v == 0 {
		return "0"
	}
	abs := math.Abs(v)
	if abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	s := strconv.FormatFloat(v, 'e', -1, 64)
	mant, exp, _ := strings.Cut(s, "e")
	sign := exp[:1]
	digits := strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "e" + sign + digits
}
