package lossmetric

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestFromGenerationReflection(t *testing.T) {
	tests := []struct {
		name                   string
		generation, reflection int64
		want                   float64
	}{
		{"no data", 0, 0, 100},
		{"no loss", 64, 64, 0},
		{"quarter lost", 64, 48, 25},
		{"more reflected than generated", 12, 13, 0},
		{"reflection without generation", 0, 5, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromGenerationReflection(tt.generation, tt.reflection)
			if !almostEqual(got, tt.want) {
				t.Errorf("FromGenerationReflection(%d, %d) = %v, want %v", tt.generation, tt.reflection, got, tt.want)
			}
		})
	}
}

func TestFromNominalCount_SameShape(t *testing.T) {
	pairs := [][2]int64{{0, 0}, {64, 59}, {64, 64}, {64, 70}, {10, 0}, {0, 3}}
	for _, p := range pairs {
		a := FromNominalCount(p[0], p[1])
		b := FromGenerationReflection(p[0], p[1])
		if !almostEqual(a, b) {
			t.Errorf("FromNominalCount(%d, %d) = %v, differs from generation/reflection %v", p[0], p[1], a, b)
		}
		if a < 0 {
			t.Errorf("FromNominalCount(%d, %d) = %v, expected a non-negative value", p[0], p[1], a)
		}
	}
}

func TestFromPacketCount(t *testing.T) {
	tests := []struct {
		overall, lost int64
		want          float64
	}{
		{0, 0, 100},
		{0, 7, 100},
		{100, 0, 0},
		{100, 100, 100},
		{100, 150, 150},
		{4, 1, 25},
	}
	for _, tt := range tests {
		got := FromPacketCount(tt.overall, tt.lost)
		if !almostEqual(got, tt.want) {
			t.Errorf("FromPacketCount(%d, %d) = %v, want %v", tt.overall, tt.lost, got, tt.want)
		}
	}
}
