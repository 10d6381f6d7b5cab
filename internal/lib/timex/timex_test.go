package timex

import (
	"testing"
	"time"
)

func TestElapsed_TableTests(t *testing.T) {
	base := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		start time.Time
		end   time.Time
		want  Breakdown
	}{
		{
			name:  "zero interval",
			start: base,
			end:   base,
			want:  Breakdown{},
		},
		{
			name:  "end before start clamps to zero",
			start: base,
			end:   base.Add(-10 * time.Hour),
			want:  Breakdown{},
		},
		{
			name:  "full decomposition",
			start: base,
			end:   base.Add(2*24*time.Hour + 3*time.Hour + 14*time.Minute + 5*time.Second),
			want: Breakdown{
				Days: 2, Hours: 3, Minutes: 14, Seconds: 5,
				TotalMinutes: 2*24*60 + 3*60 + 14,
				TotalSeconds: 2*86400 + 3*3600 + 14*60 + 5,
			},
		},
		{
			name:  "sub-second interval floors to zero seconds",
			start: base,
			end:   base.Add(900 * time.Millisecond),
			want:  Breakdown{},
		},
		{
			name:  "just under a day",
			start: base,
			end:   base.Add(24*time.Hour - time.Second),
			want: Breakdown{
				Days: 0, Hours: 23, Minutes: 59, Seconds: 59,
				TotalMinutes: 24*60 - 1,
				TotalSeconds: 86400 - 1,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Elapsed(tt.start, tt.end)
			if got != tt.want {
				t.Errorf("Elapsed(%v, %v) = %+v, want %+v", tt.start, tt.end, got, tt.want)
			}
		})
	}
}

// Компоненты разложения, собранные обратно, должны давать целые секунды
// исходного интервала.
func TestElapsed_Recombination(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	intervals := []time.Duration{
		0,
		time.Second,
		59 * time.Second,
		time.Hour + 30*time.Minute,
		26 * time.Hour,
		100*24*time.Hour + 5*time.Hour + 6*time.Minute + 7*time.Second,
		365 * 24 * time.Hour,
		17*time.Hour + 500*time.Millisecond,
	}

	for _, interval := range intervals {
		end := start.Add(interval)
		got := Elapsed(start, end)

		recombined := int64(got.Days)*86400 + int64(got.Hours)*3600 +
			int64(got.Minutes)*60 + int64(got.Seconds)
		wantSeconds := int64(interval / time.Second)

		if recombined != wantSeconds {
			t.Errorf("recombined %d seconds for interval %v, want %d", recombined, interval, wantSeconds)
		}
		if got.TotalSeconds != wantSeconds {
			t.Errorf("TotalSeconds = %d for interval %v, want %d", got.TotalSeconds, interval, wantSeconds)
		}
	}
}

func TestCalendarDaysBetween_TableTests(t *testing.T) {
	moscow, err := time.LoadLocation("Europe/Moscow")
	if err != nil {
		t.Fatalf("failed to load location: %v", err)
	}

	tests := []struct {
		name string
		a    time.Time
		b    time.Time
		loc  *time.Location
		want int
	}{
		{
			name: "same instant",
			a:    time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
			loc:  time.UTC,
			want: 0,
		},
		{
			name: "same day different hours",
			a:    time.Date(2025, 5, 1, 0, 10, 0, 0, time.UTC),
			b:    time.Date(2025, 5, 1, 23, 50, 0, 0, time.UTC),
			loc:  time.UTC,
			want: 0,
		},
		{
			name: "one minute across midnight counts as a day",
			a:    time.Date(2025, 5, 1, 23, 59, 0, 0, time.UTC),
			b:    time.Date(2025, 5, 2, 0, 1, 0, 0, time.UTC),
			loc:  time.UTC,
			want: 1,
		},
		{
			name: "negative when b before a",
			a:    time.Date(2025, 5, 10, 0, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 5, 7, 12, 0, 0, 0, time.UTC),
			loc:  time.UTC,
			want: -3,
		},
		{
			name: "local midnight decides, not UTC",
			// 23:30 UTC 1 мая — это уже 2 мая в Москве (UTC+3).
			a:    time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 5, 1, 23, 30, 0, 0, time.UTC),
			loc:  moscow,
			want: 1,
		},
		{
			name: "year boundary",
			a:    time.Date(2024, 12, 31, 23, 0, 0, 0, time.UTC),
			b:    time.Date(2025, 1, 1, 1, 0, 0, 0, time.UTC),
			loc:  time.UTC,
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalendarDaysBetween(tt.a, tt.b, tt.loc)
			if got != tt.want {
				t.Errorf("CalendarDaysBetween(%v, %v, %v) = %d, want %d",
					tt.a, tt.b, tt.loc, got, tt.want)
			}

			clamped := CalendarDaysSince(tt.a, tt.b, tt.loc)
			wantClamped := tt.want
			if wantClamped < 0 {
				wantClamped = 0
			}
			if clamped != wantClamped {
				t.Errorf("CalendarDaysSince(%v, %v, %v) = %d, want %d",
					tt.a, tt.b, tt.loc, clamped, wantClamped)
			}
		})
	}
}

func TestMilestoneProgress_TableTests(t *testing.T) {
	tests := []struct {
		name         string
		count        int
		wantPrevious int
		wantNext     int
		wantFraction float64
	}{
		{name: "zero days", count: 0, wantPrevious: 0, wantNext: 3, wantFraction: 0},
		{name: "below first milestone", count: 2, wantPrevious: 0, wantNext: 3, wantFraction: 2.0 / 3.0},
		// Граница принадлежит началу верхнего сегмента.
		{name: "exactly at milestone 3", count: 3, wantPrevious: 3, wantNext: 7, wantFraction: 0},
		{name: "between 3 and 7", count: 5, wantPrevious: 3, wantNext: 7, wantFraction: 0.5},
		{name: "exactly at milestone 7", count: 7, wantPrevious: 7, wantNext: 14, wantFraction: 0},
		{name: "exactly at last milestone", count: 365, wantPrevious: 365, wantNext: 365, wantFraction: 1},
		{name: "beyond the ladder", count: 500, wantPrevious: 365, wantNext: 365, wantFraction: 1},
		{name: "negative count treated as zero", count: -4, wantPrevious: 0, wantNext: 3, wantFraction: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MilestoneProgress(tt.count, DefaultMilestones)
			if got.Previous != tt.wantPrevious || got.Next != tt.wantNext {
				t.Errorf("MilestoneProgress(%d) segment = {%d, %d}, want {%d, %d}",
					tt.count, got.Previous, got.Next, tt.wantPrevious, tt.wantNext)
			}
			if diff := got.Fraction - tt.wantFraction; diff > 1e-9 || diff < -1e-9 {
				t.Errorf("MilestoneProgress(%d).Fraction = %v, want %v", tt.count, got.Fraction, tt.wantFraction)
			}
		})
	}
}
