package locale

import (
	"testing"
	"time"

	"guesthouse/pkg/model"
)

func TestPropertyClock_TodayUsesPropertyZone(t *testing.T) {
	clock, err := NewPropertyClock("Asia/Kolkata")
	if err != nil {
		t.Fatalf("NewPropertyClock() error = %v", err)
	}
	// 20:00 UTC on the 9th is 01:30 on the 10th in Kolkata.
	clock.now = func() time.Time { return time.Date(2025, time.March, 9, 20, 0, 0, 0, time.UTC) }

	want := model.NewDate(2025, time.March, 10)
	if got := clock.Today(); !got.Equal(want) {
		t.Errorf("Today() = %s, want %s", got, want)
	}
}

func TestNewPropertyClock(t *testing.T) {
	tests := []struct {
		name    string
		tz      string
		wantErr bool
	}{
		{name: "empty falls back to default", tz: ""},
		{name: "valid zone", tz: "Asia/Kathmandu"},
		{name: "unknown zone", tz: "Mars/Olympus", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewPropertyClock(tt.tz)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewPropertyClock(%q) error = %v, wantErr %v", tt.tz, err, tt.wantErr)
			}
		})
	}
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
	clock := FixedClock(at)

	if !clock.Now().Equal(at) {
		t.Errorf("Now() = %v, want %v", clock.Now(), at)
	}
	if got := clock.Today(); got.String() != "2025-01-01" {
		t.Errorf("Today() = %s, want 2025-01-01", got)
	}
}

func TestDetectRegion(t *testing.T) {
	tests := []struct {
		tz   string
		want string
	}{
		{"Asia/Kolkata", "IN"},
		{"asia/calcutta", "IN"},
		{"Asia/Kathmandu", "NP"},
		{"Asia/Katmandu", "NP"},
		{"Europe/Berlin", DefaultRegion},
	}

	for _, tt := range tests {
		if got := DetectRegion(tt.tz); got != tt.want {
			t.Errorf("DetectRegion(%q) = %q, want %q", tt.tz, got, tt.want)
		}
	}
}
