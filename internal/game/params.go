// Package game runs a single defense round: ship and laser lifecycle, shot
// timing, scoring and the round-end rule.
package game

import (
	"math"
	"strings"
	"time"
)

// Params holds the tunable constants of a round.
type Params struct {
	FieldWidth  float64
	FieldHeight float64
	CoreRadius  float64
	// CrashMargin widens the core radius for ship collisions.
	CrashMargin float64

	HitsToDestroy int
	SpeedMin      float64 // px/s
	SpeedMax      float64 // px/s
	SpawnOffset   float64
	FallbackAim   float64

	RoundDuration time.Duration
	LaserTravel   time.Duration
	MisfireLock   time.Duration
	Explosion     time.Duration
	RespawnDelay  time.Duration

	DestroyPoints int
	CrashPoints   int
}

// DefaultParams returns the standard round constants.
func DefaultParams() Params {
	return Params{
		FieldWidth:    720,
		FieldHeight:   720,
		CoreRadius:    92,
		CrashMargin:   6,
		HitsToDestroy: 5,
		SpeedMin:      70,
		SpeedMax:      105,
		SpawnOffset:   35,
		FallbackAim:   170,
		RoundDuration: 20 * time.Second,
		LaserTravel:   240 * time.Millisecond,
		MisfireLock:   110 * time.Millisecond,
		Explosion:     650 * time.Millisecond,
		RespawnDelay:  520 * time.Millisecond,
		DestroyPoints: 20,
		CrashPoints:   -2,
	}
}

// Core returns the centre of the core target.
func (p Params) Core() Vec {
	return Vec{X: p.FieldWidth / 2, Y: p.FieldHeight / 2}
}

// OnCore reports whether a field point lies inside the core hit region.
func (p Params) OnCore(pt Vec) bool {
	return pt.Dist(p.Core()) <= p.CoreRadius
}

// Clamp limits a point to the field bounds.
func (p Params) Clamp(pt Vec) Vec {
	return Vec{
		X: math.Max(0, math.Min(p.FieldWidth, pt.X)),
		Y: math.Max(0, math.Min(p.FieldHeight, pt.Y)),
	}
}

// TrialType derives the TrialType column from a level label: the first "%",
// "PRACTICE_" and "_" are removed, so "80%" becomes "80" and
// "PRACTICE_100%" becomes "100".
func TrialType(label string) string {
	label = strings.Replace(label, "%", "", 1)
	label = strings.Replace(label, "PRACTICE_", "", 1)
	return strings.Replace(label, "_", "", 1)
}

// Vec is a point or velocity in field pixels.
type Vec struct {
	X, Y float64
}

// Add returns v+o.
func (v Vec) Add(o Vec) Vec { return Vec{X: v.X + o.X, Y: v.Y + o.Y} }

// Sub returns v-o.
func (v Vec) Sub(o Vec) Vec { return Vec{X: v.X - o.X, Y: v.Y - o.Y} }

// Scale returns v*k.
func (v Vec) Scale(k float64) Vec { return Vec{X: v.X * k, Y: v.Y * k} }

// Len returns the Euclidean length.
func (v Vec) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the Euclidean distance to o.
func (v Vec) Dist(o Vec) float64 { return v.Sub(o).Len() }

// Lerp interpolates from v to o by t in [0,1].
func (v Vec) Lerp(o Vec, t float64) Vec { return v.Add(o.Sub(v).Scale(t)) }
