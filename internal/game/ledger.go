package game

// Ledger is the session score. It starts at zero, persists across rounds and
// changes only on ship destroy and crash events.
type Ledger struct {
	total int
}

// Total returns the current score.
func (l *Ledger) Total() int {
	return l.total
}

func (l *Ledger) apply(delta int) int {
	l.total += delta
	return l.total
}
