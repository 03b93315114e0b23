// Package metrics holds the pure training-math functions: estimated
// one-rep-max, rounding, and the next-weight heuristic.
package metrics

import "math"

// Epley1RM estimates the one-rep max from a weight and rep count using the
// Epley formula. The formula is trivial at a single rep, so reps <= 1 returns
// the weight unchanged.
func Epley1RM(weight float64, reps int) float64 {
	if reps <= 1 {
		return weight
	}
	return weight * (1 + float64(reps)/30)
}

// Round1 rounds to one decimal place.
func Round1(n float64) float64 {
	return math.Round(n*10) / 10
}

// DefaultIncrementKg is the fallback load step when an exercise has no
// catalog increment configured.
const DefaultIncrementKg = 2.5

// SuggestInput feeds SuggestNextWeight.
type SuggestInput struct {
	LastWeight   float64
	LastReps     int
	TargetRepMin int
	TargetRepMax int
	LastRPE      *float64
	IncrementKg  float64 // negative means DefaultIncrementKg; 0 freezes the load
}

// SuggestNextWeight returns the weight to attempt next. The RPE gate is
// checked first and short-circuits the rep-range rules: a near-maximal last
// set (RPE >= 9) holds the weight regardless of reps.
func SuggestNextWeight(in SuggestInput) float64 {
	inc := in.IncrementKg
	if inc < 0 {
		inc = DefaultIncrementKg
	}
	switch {
	case in.LastRPE != nil && *in.LastRPE >= 9:
		return in.LastWeight
	case in.LastReps >= in.TargetRepMax:
		return in.LastWeight + inc
	case in.LastReps < in.TargetRepMin:
		return math.Max(0, in.LastWeight-inc)
	default:
		return in.LastWeight
	}
}
