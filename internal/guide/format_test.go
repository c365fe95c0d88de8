package guide

import "testing"

func floatPtr(v float64) *float64 { return &v }

// TestFormatSet verifies the value-joining rules, including omitted fields
// and the RPE suffix.
func TestFormatSet(t *testing.T) {
	tests := []struct {
		name   string
		reps   *int
		time   *int
		weight *float64
		rpe    *float64
		want   string
	}{
		{name: "empty", want: ""},
		{name: "reps only", reps: intPtr(8), want: "8"},
		{name: "time only", time: intPtr(30), want: "30 s"},
		{name: "weight only", weight: floatPtr(62.5), want: "62.5 kg"},
		{name: "rpe only", rpe: floatPtr(8), want: " @ 8"},
		{name: "reps and weight", reps: intPtr(5), weight: floatPtr(100), want: "5 × 100 kg"},
		{
			name:   "all values",
			reps:   intPtr(10),
			time:   intPtr(4),
			weight: floatPtr(20),
			rpe:    floatPtr(7.5),
			want:   "10 × 4 s × 20 kg @ 7.5",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatSet(tt.reps, tt.time, tt.weight, tt.rpe); got != tt.want {
				t.Errorf("FormatSet = %q, want %q", got, tt.want)
			}
		})
	}
}
