package utils

import (
	"testing"
	"time"
)

func TestFormatDuration(t *testing.T) {
	start := time.Date(2024, 3, 20, 6, 41, 0, 0, time.UTC)

	tests := []struct {
		name     string
		span     time.Duration
		expected string
	}{
		{"zero", 0, "0h 00m"},
		{"one hour one minute one second", 3661 * time.Second, "1h 01m"},
		{"sub minute", 59*time.Second + 999*time.Millisecond, "0h 00m"},
		{"typical day", 12*time.Hour + 7*time.Minute + 30*time.Second, "12h 07m"},
		{"long span", 30*time.Hour + 5*time.Minute, "30h 05m"},
		{"sub millisecond ignored", 999 * time.Microsecond, "0h 00m"},
		{"negative", -(90 * time.Minute), "-1h 30m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatDuration(start, start.Add(tt.span))
			if got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}

func TestParseFormDate(t *testing.T) {
	mexico, err := time.LoadLocation("America/Mexico_City")
	if err != nil {
		t.Skipf("Skipping test: America/Mexico_City timezone not available: %v", err)
	}

	tests := []struct {
		input       string
		expected    time.Time
		expectError bool
	}{
		{"20/03/2024", time.Date(2024, 3, 20, 0, 0, 0, 0, mexico), false},
		{"5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, mexico), false},
		{" 31/12/1999 ", time.Date(1999, 12, 31, 0, 0, 0, 0, mexico), false},
		{"2024-03-20", time.Time{}, true},
		{"31/02/2024", time.Time{}, true},
		{"Choose Date", time.Time{}, true},
		{"", time.Time{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseFormDate(tt.input, mexico)
			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for %q, got %v", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !got.Equal(tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestParseFormDate_NilLocation(t *testing.T) {
	got, err := ParseFormDate("1/1/2024", nil)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got.Location() != time.UTC {
		t.Errorf("Expected UTC, got %v", got.Location())
	}
}

func TestFormatFormDate(t *testing.T) {
	d := time.Date(2024, 3, 5, 13, 0, 0, 0, time.UTC)
	if got := FormatFormDate(d); got != "5/3/2024" {
		t.Errorf("Expected 5/3/2024, got %q", got)
	}
}

func TestFormatClock(t *testing.T) {
	d := time.Date(2024, 3, 5, 7, 4, 59, 0, time.UTC)
	if got := FormatClock(d); got != "07:04" {
		t.Errorf("Expected 07:04, got %q", got)
	}
}
