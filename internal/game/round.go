package game

import (
	"math"
	"sort"
	"time"

	"github.com/megancady/Space-Defense-Pilot/internal/clock"
	"github.com/megancady/Space-Defense-Pilot/internal/eventlog"
	"github.com/megancady/Space-Defense-Pilot/internal/model"
)

// Phase is the round state.
type Phase int

// Round phases.
const (
	NotStarted Phase = iota
	Running
	Ended
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case Running:
		return "running"
	case Ended:
		return "ended"
	default:
		return "unknown"
	}
}

// ShipState distinguishes a flying ship from one playing its explosion.
type ShipState int

// Ship states.
const (
	Flying ShipState = iota
	Exploding
)

// Ship is the hostile entity of a round.
type Ship struct {
	ID         int
	Pos        Vec
	Vel        Vec
	Hits       int
	State      ShipState
	ExplodedAt time.Time
	Crashed    bool
}

// Laser is a committed shot. WillHit is fixed when the laser is armed.
type Laser struct {
	From    Vec
	To      Vec
	FiredAt time.Time
	ShipID  int
	WillHit bool
}

// Rand is the random source a round draws from; *rand.Rand satisfies it.
type Rand interface {
	Float64() float64
}

// Input is one raw click in field coordinates.
type Input struct {
	At   time.Time
	X, Y float64
}

// ClickResult describes how a click was handled.
type ClickResult struct {
	Accepted bool
	OnCore   bool
	Fired    bool
}

// Deps are the session-owned collaborators shared by every round.
type Deps struct {
	Clock  *clock.Clock
	Log    *eventlog.Log
	Ledger *Ledger
	Rand   Rand
}

// Round simulates one trial. It is driven by Start, Click and Tick from a
// single goroutine.
type Round struct {
	deps      Deps
	params    Params
	spec      model.RoundSpec
	subject   string
	trialType string
	duration  time.Duration

	phase     Phase
	startedAt time.Time
	last      time.Time // previous tick sample
	seen      time.Time // latest time stamped on a row
	expired   bool

	ship        *Ship
	laser       *Laser
	respawnAt   time.Time
	lockedUntil time.Time
	nextShipID  int

	targetClicks     int
	backgroundClicks int

	pending []eventlog.Row
}

// NewRound prepares a round. A zero spec.Duration uses params.RoundDuration.
func NewRound(deps Deps, params Params, spec model.RoundSpec, subject string) *Round {
	duration := spec.Duration
	if duration <= 0 {
		duration = params.RoundDuration
	}
	return &Round{
		deps:      deps,
		params:    params,
		spec:      spec,
		subject:   subject,
		trialType: TrialType(spec.Label),
		duration:  duration,
	}
}

// Phase returns the current phase.
func (r *Round) Phase() Phase { return r.phase }

// Ended reports whether the round reached its terminal state.
func (r *Round) Ended() bool { return r.phase == Ended }

// Spec returns the round configuration.
func (r *Round) Spec() model.RoundSpec { return r.spec }

// Score returns the live session score.
func (r *Round) Score() int { return r.deps.Ledger.Total() }

// Counts returns the target and background click counters.
func (r *Round) Counts() (target, background int) {
	return r.targetClicks, r.backgroundClicks
}

// Start begins the round at now: the session clock is anchored if this is
// the first round, the first ship spawns and trial_start is logged.
func (r *Round) Start(now time.Time) []eventlog.Row {
	if r.phase != NotStarted {
		return nil
	}
	r.deps.Clock.Init(now)
	r.phase = Running
	r.startedAt = now
	r.last = now
	r.seen = now
	r.ship = r.spawn()

	row := r.row(eventlog.TrialStart, now)
	row.Probability = eventlog.Opt(r.spec.Probability)
	row.Practice = eventlog.Opt(r.spec.Practice)
	r.emit(row)
	return r.drain()
}

// Click handles one raw interaction at time at. Coordinates outside the
// field are clamped. Clicks inside the input lock, or outside a running
// round, are ignored.
func (r *Round) Click(at time.Time, x, y float64) ClickResult {
	if r.phase != Running {
		return ClickResult{}
	}
	if at.Before(r.seen) {
		at = r.seen
	}
	if at.Before(r.lockedUntil) {
		return ClickResult{}
	}
	r.seen = at

	pt := r.params.Clamp(Vec{X: x, Y: y})
	res := ClickResult{Accepted: true, OnCore: r.params.OnCore(pt)}
	kind := eventlog.BackgroundClick
	if res.OnCore {
		res.Fired = r.fire(at)
		r.targetClicks++
		kind = eventlog.TargetClick
	} else {
		r.backgroundClicks++
	}

	row := r.row(kind, at)
	row.X = eventlog.Opt(pt.X)
	row.Y = eventlog.Opt(pt.Y)
	row.Fired = eventlog.Opt(res.Fired)
	r.emit(row)
	return res
}

// Tick applies inputs in time order, then advances the simulation to now.
// It returns every row logged since the previous Start or Tick returned,
// including rows from direct Click calls.
func (r *Round) Tick(now time.Time, inputs []Input) []eventlog.Row {
	if r.phase != Running {
		return r.drain()
	}
	if len(inputs) > 0 {
		ordered := append([]Input(nil), inputs...)
		sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].At.Before(ordered[j].At) })
		for _, in := range ordered {
			at := in.At
			if at.After(now) {
				at = now
			}
			r.Click(at, in.X, in.Y)
		}
	}

	if now.Before(r.seen) {
		now = r.seen
	}
	dt := now.Sub(r.last).Seconds()
	r.last = now
	r.seen = now

	if !r.expired && now.Sub(r.startedAt) >= r.duration {
		r.expired = true
	}
	r.resolveLaser(now)
	r.advanceShip(now, dt)
	if r.ship == nil && !r.expired && !now.Before(r.respawnAt) {
		r.ship = r.spawn()
	}
	if r.expired && r.ship == nil && r.laser == nil {
		r.end(now)
	}
	return r.drain()
}

func (r *Round) fire(at time.Time) bool {
	if r.deps.Rand.Float64() >= r.spec.Probability {
		r.lockedUntil = at.Add(r.params.MisfireLock)
		return false
	}
	// A laser whose travel time elapsed since the last tick lands before the
	// next one is armed.
	r.resolveLaser(at)
	r.lockedUntil = at.Add(r.params.LaserTravel)

	core := r.params.Core()
	laser := &Laser{
		From:    core,
		To:      Vec{X: core.X, Y: core.Y - r.params.FallbackAim},
		FiredAt: at,
	}
	if r.ship != nil && r.ship.State == Flying {
		laser.To = r.ship.Pos
		laser.ShipID = r.ship.ID
		laser.WillHit = true
	}
	r.laser = laser
	return true
}

func (r *Round) resolveLaser(now time.Time) {
	if r.laser == nil || now.Sub(r.laser.FiredAt) < r.params.LaserTravel {
		return
	}
	laser := r.laser
	r.laser = nil
	ship := r.ship
	if !laser.WillHit || ship == nil || ship.State != Flying || ship.ID != laser.ShipID {
		return
	}
	ship.Hits++
	if ship.Hits < r.params.HitsToDestroy {
		return
	}
	ship.State = Exploding
	ship.ExplodedAt = now
	ship.Crashed = false
	r.deps.Ledger.apply(r.params.DestroyPoints)

	row := r.row(eventlog.ShipDestroy, now)
	row.PointsDelta = eventlog.Opt(r.params.DestroyPoints)
	r.emit(row)
}

func (r *Round) advanceShip(now time.Time, dt float64) {
	ship := r.ship
	if ship == nil {
		return
	}
	if ship.State == Exploding {
		if now.Sub(ship.ExplodedAt) >= r.params.Explosion {
			r.ship = nil
			r.respawnAt = now.Add(r.params.RespawnDelay)
		}
		return
	}
	ship.Pos = ship.Pos.Add(ship.Vel.Scale(dt))
	if ship.Pos.Dist(r.params.Core()) > r.params.CoreRadius+r.params.CrashMargin {
		return
	}
	ship.State = Exploding
	ship.ExplodedAt = now
	ship.Crashed = true
	r.deps.Ledger.apply(r.params.CrashPoints)

	row := r.row(eventlog.ShipCrash, now)
	row.PointsDelta = eventlog.Opt(r.params.CrashPoints)
	r.emit(row)
}

// spawn places a ship just outside a random field edge, heading for the core.
func (r *Round) spawn() *Ship {
	p := r.params
	rnd := r.deps.Rand
	var pos Vec
	switch edge := int(math.Floor(rnd.Float64() * 4)); edge {
	case 0:
		pos = Vec{X: rnd.Float64() * p.FieldWidth, Y: -p.SpawnOffset}
	case 1:
		pos = Vec{X: p.FieldWidth + p.SpawnOffset, Y: rnd.Float64() * p.FieldHeight}
	case 2:
		pos = Vec{X: rnd.Float64() * p.FieldWidth, Y: p.FieldHeight + p.SpawnOffset}
	default:
		pos = Vec{X: -p.SpawnOffset, Y: rnd.Float64() * p.FieldHeight}
	}
	dir := p.Core().Sub(pos)
	d := dir.Len()
	if d == 0 {
		d = 1
	}
	speed := p.SpeedMin + rnd.Float64()*(p.SpeedMax-p.SpeedMin)
	r.nextShipID++
	return &Ship{
		ID:  r.nextShipID,
		Pos: pos,
		Vel: dir.Scale(speed / d),
	}
}

func (r *Round) end(now time.Time) {
	r.phase = Ended
	r.laser = nil
	row := r.row(eventlog.TrialEnd, now)
	row.Probability = eventlog.Opt(r.spec.Probability)
	row.Practice = eventlog.Opt(r.spec.Practice)
	r.emit(row)
}

func (r *Round) row(kind eventlog.Kind, at time.Time) eventlog.Row {
	return eventlog.Row{
		SessionTime:        r.deps.Clock.Stamp(at),
		Kind:               kind,
		TrialTime:          eventlog.Opt(at.Sub(r.startedAt).Seconds()),
		TrialType:          r.trialType,
		TargetClickNum:     r.targetClicks,
		BackgroundClickNum: r.backgroundClicks,
		TrialNum:           r.spec.Index,
		TrialColor:         r.spec.Color,
		Subject:            r.subject,
		Date:               r.deps.Clock.Date(),
		ScoreTotal:         r.deps.Ledger.Total(),
	}
}

func (r *Round) emit(row eventlog.Row) {
	r.deps.Log.Append(row)
	r.pending = append(r.pending, row)
}

func (r *Round) drain() []eventlog.Row {
	out := r.pending
	r.pending = nil
	return out
}
