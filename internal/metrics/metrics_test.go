package metrics

import (
	"math"
	"testing"
)

// TestEpley1RM verifies the formula against known values and the reps<=1
// pass-through.
func TestEpley1RM(t *testing.T) {
	tests := []struct {
		weight float64
		reps   int
		want   float64
	}{
		{100, 5, 116.6667},
		{80, 8, 101.3333},
		{100, 1, 100},
		{100, 0, 100},
		{60, 30, 120},
	}

	for _, tt := range tests {
		got := Epley1RM(tt.weight, tt.reps)
		if math.Abs(got-tt.want) > 0.001 {
			t.Errorf("Epley1RM(%.0f, %d) = %.4f, want %.4f", tt.weight, tt.reps, got, tt.want)
		}
	}
}

// TestRound1 verifies one-decimal rounding.
func TestRound1(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{116.66666, 116.7},
		{101.333, 101.3},
		{0.05, 0.1},
		{99.95, 100.0},
		{0, 0},
	}

	for _, tt := range tests {
		if got := Round1(tt.in); got != tt.want {
			t.Errorf("Round1(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

// TestSuggestNextWeight covers each branch, including the RPE gate taking
// precedence over a topped-out rep range.
func TestSuggestNextWeight(t *testing.T) {
	rpe := func(v float64) *float64 { return &v }

	tests := []struct {
		name string
		in   SuggestInput
		want float64
	}{
		{
			name: "high RPE holds weight even within range",
			in:   SuggestInput{LastWeight: 100, LastReps: 8, TargetRepMin: 6, TargetRepMax: 10, LastRPE: rpe(9.5), IncrementKg: 2.5},
			want: 100,
		},
		{
			name: "high RPE beats topped-out reps",
			in:   SuggestInput{LastWeight: 100, LastReps: 10, TargetRepMin: 6, TargetRepMax: 10, LastRPE: rpe(9), IncrementKg: 2.5},
			want: 100,
		},
		{
			name: "reps at top of range adds increment",
			in:   SuggestInput{LastWeight: 100, LastReps: 10, TargetRepMin: 6, TargetRepMax: 10, IncrementKg: 2.5},
			want: 102.5,
		},
		{
			name: "reps below range drops increment",
			in:   SuggestInput{LastWeight: 100, LastReps: 4, TargetRepMin: 6, TargetRepMax: 10, IncrementKg: 2.5},
			want: 97.5,
		},
		{
			name: "drop floors at zero",
			in:   SuggestInput{LastWeight: 1, LastReps: 2, TargetRepMin: 6, TargetRepMax: 10, IncrementKg: 2.5},
			want: 0,
		},
		{
			name: "within range holds weight",
			in:   SuggestInput{LastWeight: 100, LastReps: 8, TargetRepMin: 6, TargetRepMax: 10, IncrementKg: 2.5},
			want: 100,
		},
		{
			name: "zero increment freezes the load",
			in:   SuggestInput{LastWeight: 100, LastReps: 10, TargetRepMin: 6, TargetRepMax: 10},
			want: 100,
		},
		{
			name: "negative increment falls back to default",
			in:   SuggestInput{LastWeight: 100, LastReps: 10, TargetRepMin: 6, TargetRepMax: 10, IncrementKg: -1},
			want: 102.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SuggestNextWeight(tt.in); got != tt.want {
				t.Errorf("SuggestNextWeight = %v, want %v", got, tt.want)
			}
		})
	}
}
