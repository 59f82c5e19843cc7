package game

import "time"

// Snapshot is a read-only view of a round for rendering.
type Snapshot struct {
	Phase   Phase
	Elapsed time.Duration
	Expired bool

	Ship  *Ship
	Laser *Laser
	// LaserTip is the current head of the beam.
	LaserTip Vec
	// ExplosionFrac runs from 0 to 1 over the explosion duration.
	ExplosionFrac float64

	TargetClicks     int
	BackgroundClicks int
	Score            int
	Locked           bool
}

// Snapshot captures the round state at now. Ship and Laser are copies.
func (r *Round) Snapshot(now time.Time) Snapshot {
	s := Snapshot{
		Phase:            r.phase,
		Expired:          r.expired,
		TargetClicks:     r.targetClicks,
		BackgroundClicks: r.backgroundClicks,
		Score:            r.deps.Ledger.Total(),
		Locked:           now.Before(r.lockedUntil),
	}
	if r.phase != NotStarted {
		s.Elapsed = now.Sub(r.startedAt)
	}
	if r.ship != nil {
		ship := *r.ship
		s.Ship = &ship
		if ship.State == Exploding {
			s.ExplosionFrac = fraction(now.Sub(ship.ExplodedAt), r.params.Explosion)
		}
	}
	if r.laser != nil {
		laser := *r.laser
		s.Laser = &laser
		s.LaserTip = laser.From.Lerp(laser.To, fraction(now.Sub(laser.FiredAt), r.params.LaserTravel))
	}
	return s
}

// Params returns the constants the round runs with.
func (r *Round) Params() Params { return r.params }

func fraction(elapsed, total time.Duration) float64 {
	if total <= 0 {
		return 1
	}
	f := float64(elapsed) / float64(total)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
