package timeutil

import (
	"testing"
	"time"
)

func TestFixedClock(t *testing.T) {
	fixed := time.Date(2025, 11, 20, 12, 30, 45, 0, time.UTC)
	clock := FixedClock(fixed)

	if got := clock(); !got.Equal(fixed) {
		t.Errorf("FixedClock() = %v, want %v", got, fixed)
	}
	if got := clock(); !got.Equal(fixed) {
		t.Errorf("FixedClock() second call = %v, want %v", got, fixed)
	}
}

func TestClockIn(t *testing.T) {
	loc := time.FixedZone("NPT", 5*3600+45*60)
	now := ClockIn(loc)()

	if now.Location() != loc {
		t.Errorf("ClockIn() returned location %v, want %v", now.Location(), loc)
	}
}

func TestClockIn_NilLocation(t *testing.T) {
	now := ClockIn(nil)()

	if now.Location() != time.Local {
		t.Errorf("ClockIn(nil) returned location %v, want Local", now.Location())
	}
}

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    *time.Location
		wantErr bool
	}{
		{name: "empty", input: "", want: time.Local},
		{name: "local", input: "Local", want: time.Local},
		{name: "utc", input: "UTC", want: time.UTC},
		{name: "unknown", input: "Not/AZone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LoadLocation(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("LoadLocation(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("LoadLocation(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.want.String() {
				t.Errorf("LoadLocation(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
