package aqi

import "testing"

func TestCalculatePM25(t *testing.T) {
	tests := []struct {
		pm25     float64
		expected int
	}{
		{-1, 0},
		{0, 0},
		{12.0, 50},
		{35.4, 100},
		{55.4, 150},
		{150.4, 200},
		{500.4, 500},
		{9999, 500},
	}

	for _, tt := range tests {
		if got := CalculatePM25(tt.pm25); got != tt.expected {
			t.Errorf("CalculatePM25(%v) = %d, want %d", tt.pm25, got, tt.expected)
		}
	}
}

func TestCalculatePM10(t *testing.T) {
	tests := []struct {
		pm10     float64
		expected int
	}{
		{0, 0},
		{54, 50},
		{154, 100},
		{604, 500},
		{10000, 500},
	}

	for _, tt := range tests {
		if got := CalculatePM10(tt.pm10); got != tt.expected {
			t.Errorf("CalculatePM10(%v) = %d, want %d", tt.pm10, got, tt.expected)
		}
	}
}

func TestGetCategory(t *testing.T) {
	tests := []struct {
		aqi      int
		expected string
	}{
		{0, "Good"},
		{50, "Good"},
		{51, "Moderate"},
		{125, "Unhealthy for Sensitive Groups"},
		{175, "Unhealthy"},
		{250, "Very Unhealthy"},
		{400, "Hazardous"},
	}

	for _, tt := range tests {
		if got := GetCategory(tt.aqi); got != tt.expected {
			t.Errorf("GetCategory(%d) = %q, want %q", tt.aqi, got, tt.expected)
		}
	}
}
