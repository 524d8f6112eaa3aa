package subscriptions

import (
	"testing"
	"time"
)

func TestAddDuration(t *testing.T) {
	start := time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		duration string
		want     time.Time
	}{
		{"months", "2 months", time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC)},
		{"single month", "1 month", time.Date(2024, time.February, 15, 0, 0, 0, 0, time.UTC)},
		{"days", "30 days", time.Date(2024, time.February, 14, 0, 0, 0, 0, time.UTC)},
		{"bare number treated as days", "10", time.Date(2024, time.January, 25, 0, 0, 0, 0, time.UTC)},
		{"unparseable is zero days", "soon", start},
		{"unparseable month count", "some months", start},
		{"mixed case month", "3 Months", time.Date(2024, time.April, 15, 0, 0, 0, 0, time.UTC)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := AddDuration(start, tc.duration)
			if !got.Equal(tc.want) {
				t.Fatalf("AddDuration(%q) = %s, want %s", tc.duration, got, tc.want)
			}
		})
	}
}

func TestAddDurationMonthEndClamping(t *testing.T) {
	// AddDate normalizes Jan 31 + 1 month to Mar 2/3; calendar month
	// increment is the documented behavior, so just assert it lands past
	// February.
	start := time.Date(2024, time.January, 31, 0, 0, 0, 0, time.UTC)
	got := AddDuration(start, "1 month")
	if !got.After(time.Date(2024, time.February, 28, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("expected end past february, got %s", got)
	}
}
