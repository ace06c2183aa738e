package utils

import (
	"testing"
	"time"
)

func TestStartOfDayKeepsCalendarDate(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+30*60)

	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{
			name: "offset midnight stays on its own day",
			in:   time.Date(2026, time.September, 21, 0, 0, 0, 0, ist),
			want: time.Date(2026, time.September, 21, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "utc timestamp drops the clock",
			in:   time.Date(2026, time.September, 21, 17, 45, 3, 0, time.UTC),
			want: time.Date(2026, time.September, 21, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "negative offset evening stays on its own day",
			in:   time.Date(2026, time.September, 21, 23, 0, 0, 0, time.FixedZone("PST", -8*3600)),
			want: time.Date(2026, time.September, 21, 0, 0, 0, 0, time.UTC),
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := StartOfDay(tc.in)
			if !got.Equal(tc.want) {
				t.Fatalf("StartOfDay(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}
}
