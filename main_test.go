package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := newRootCmd(&stdout, &stderr)
	cmd.SetArgs(append(args, "--env-file", filepath.Join(t.TempDir(), "none.env")))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCalcCommand(t *testing.T) {
	out, stderr, err := runCLI(t, "calc",
		"--date", "20/3/2024",
		"--lat", "19:25:42", "--ns", "N",
		"--long", "99:8:0", "--ew", "W",
		"--zone", "America/Mexico_City", "--dst", "No")
	if err != nil {
		t.Fatalf("calc failed: %v (%s)", err, stderr)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected 3 lines, got %q", out)
	}
	for i, prefix := range []string{"Sunrise: ", "Sunset: ", "Day Length: "} {
		if !strings.HasPrefix(lines[i], prefix) {
			t.Errorf("Line %d: expected prefix %q, got %q", i, prefix, lines[i])
		}
	}
}

func TestCalcCommand_JSON(t *testing.T) {
	out, stderr, err := runCLI(t, "calc",
		"--date", "20/3/2024",
		"--lat-deg", "19", "--lat-min", "25", "--lat-sec", "42",
		"--long-deg", "99", "--long-min", "8", "--ew", "W",
		"--zone", "auto", "--engine", "sunrise", "--json")
	if err != nil {
		t.Fatalf("calc failed: %v (%s)", err, stderr)
	}

	var result struct {
		TimeZone string `json:"time_zone"`
		Engine   string `json:"engine"`
		Sunrise  string `json:"sunrise"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("Failed to decode output %q: %v", out, err)
	}
	if result.TimeZone != "America/Mexico_City" || result.Engine != "sunrise" || result.Sunrise == "" {
		t.Errorf("Unexpected result %+v", result)
	}
}

func TestCalcCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		message string
	}{
		{
			name:    "missing date",
			args:    []string{"calc", "--lat", "10", "--long", "10"},
			message: "Please select a date",
		},
		{
			name:    "latitude out of range",
			args:    []string{"calc", "--date", "1/1/2024", "--lat", "91", "--long", "10"},
			message: "Latitude degrees must be between -90 and 90",
		},
		{
			name:    "impossible date",
			args:    []string{"calc", "--date", "31/2/2024", "--lat", "10", "--long", "10", "--zone", "UTC"},
			message: "Unable to calculate sunrise and sunset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, stderr, err := runCLI(t, tt.args...)
			if !errors.Is(err, errReported) {
				t.Fatalf("Expected reported error, got %v", err)
			}
			if strings.TrimSpace(stderr) != tt.message {
				t.Errorf("Expected %q, got %q", tt.message, stderr)
			}
		})
	}
}

func TestUnknownCommand(t *testing.T) {
	_, _, err := runCLI(t, "sunrise")
	if err == nil || errors.Is(err, errReported) {
		t.Errorf("Expected unreported cobra error, got %v", err)
	}
}

func TestSplitDMS(t *testing.T) {
	tests := []struct {
		input          string
		deg, min, sec string
	}{
		{"19:25:42", "19", "25", "42"},
		{"19:25", "19", "25", "0"},
		{"19", "19", "0", "0"},
		{"19:25:42.5", "19", "25", "42.5"},
	}
	for _, tt := range tests {
		d, m, s := splitDMS(tt.input)
		if d != tt.deg || m != tt.min || s != tt.sec {
			t.Errorf("splitDMS(%q) = %s %s %s, expected %s %s %s", tt.input, d, m, s, tt.deg, tt.min, tt.sec)
		}
	}
}
