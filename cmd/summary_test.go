package cmd

import "testing"

func TestSparkline(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   string
	}{
		{"ascending", []float64{0, 1, 2, 3, 4, 5, 6, 7}, "▁▂▃▄▅▆▇█"},
		{"flat series uses middle block", []float64{5, 5, 5}, "▅▅▅"},
		{"min and max only", []float64{10, 90}, "▁█"},
		{"empty", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sparkline(tt.values)
			if got != tt.want {
				t.Errorf("sparkline(%v) = %q, want %q", tt.values, got, tt.want)
			}
		})
	}
}

func TestFormatCompact(t *testing.T) {
	tests := []struct {
		value float64
		want  string
	}{
		{0, "0"},
		{950, "950"},
		{1000, "1k"},
		{12500, "12k"},
		{1000000, "1.0M"},
		{2450000, "2.5M"},
		{-1500000, "-1.5M"},
	}
	for _, tt := range tests {
		got := formatCompact(tt.value)
		if got != tt.want {
			t.Errorf("formatCompact(%v) = %q, want %q", tt.value, got, tt.want)
		}
	}
}

func TestDollars(t *testing.T) {
	if got := dollars(0); got != "- -" {
		t.Errorf("dollars(0) = %q, want placeholder", got)
	}
	if got := dollars(125000); got != "$125,000" {
		t.Errorf("dollars(125000) = %q, want $125,000", got)
	}
}
