package content

import (
	"testing"
	"time"
)

// analysisClock is the fixed reference time used by freshness tests.
var analysisClock = time.Date(2026, time.August, 31, 0, 0, 0, 0, time.UTC)

// TestFreshnessAnalyzer tests date extraction and staleness scoring.
func TestFreshnessAnalyzer(t *testing.T) {
	t.Parallel()

	analyzer := NewFreshnessAnalyzer(analysisClock)

	t.Run("no date yields neutral staleness", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("An article with no publication date anywhere in it.")
		if got.DateFound {
			t.Error("DateFound = true, no date present")
		}
		if got.DaysOld != -1 {
			t.Errorf("DaysOld = %d, expected -1", got.DaysOld)
		}
		if got.Bucket != FreshnessUnknown {
			t.Errorf("Bucket = %q, expected %q", got.Bucket, FreshnessUnknown)
		}
		if got.StalenessScore != 0.5 {
			t.Errorf("StalenessScore = %v, unknown age must read as neutral 0.5", got.StalenessScore)
		}
	})

	t.Run("keyword date marks old evergreen content as very stale", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("Published on January 1, 2020. The best air fryers you can buy today.")
		if !got.DateFound || got.Source != "keyword" {
			t.Fatalf("extraction failed: %+v", got)
		}
		if got.DaysOld != 2434 {
			t.Errorf("DaysOld = %d, expected 2434", got.DaysOld)
		}
		if got.Bucket != FreshnessVeryStale {
			t.Errorf("Bucket = %q, expected %q", got.Bucket, FreshnessVeryStale)
		}
		if got.StalenessScore != 1 {
			t.Errorf("StalenessScore = %v, multi-year age must saturate at 1", got.StalenessScore)
		}
	})

	t.Run("keyword dates outrank bare ISO dates", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("Updated: 2026-08-01. The game ships 2019-03-15 worldwide.")
		if got.Source != "keyword" {
			t.Errorf("Source = %q, expected keyword to win over iso8601", got.Source)
		}
		if got.DaysOld != 30 {
			t.Errorf("DaysOld = %d, expected 30", got.DaysOld)
		}
	})

	t.Run("iso date", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("The report dated 2026-08-24 covers the previous quarter.")
		if got.Source != "iso8601" || got.DaysOld != 7 {
			t.Errorf("got source=%q days=%d, expected iso8601/7", got.Source, got.DaysOld)
		}
		if got.Bucket != FreshnessFresh {
			t.Errorf("Bucket = %q, expected %q", got.Bucket, FreshnessFresh)
		}
	})

	t.Run("us date", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("Filed 8/30/2026 in the county office.")
		if got.Source != "us_date" || got.DaysOld != 1 {
			t.Errorf("got source=%q days=%d, expected us_date/1", got.Source, got.DaysOld)
		}
	})

	t.Run("month-year mention anchors to the first of the month", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("Back in June 2026 the policy changed.")
		if got.Source != "month_year" {
			t.Fatalf("Source = %q, expected month_year", got.Source)
		}
		want := time.Date(2026, time.June, 1, 0, 0, 0, 0, time.UTC)
		if !got.PublishDate.Equal(want) {
			t.Errorf("PublishDate = %v, expected %v", got.PublishDate, want)
		}
	})

	t.Run("relative date", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("Posted by admin 3 days ago in the lifestyle section.")
		if got.Source != "relative" || got.DaysOld != 3 {
			t.Errorf("got source=%q days=%d, expected relative/3", got.Source, got.DaysOld)
		}
		if got.Bucket != FreshnessVeryFresh {
			t.Errorf("Bucket = %q, expected %q", got.Bucket, FreshnessVeryFresh)
		}
	})

	t.Run("future dates clamp to zero days", func(t *testing.T) {
		t.Parallel()

		got := analyzer.Analyze("Published on December 25, 2026.")
		if got.DaysOld != 0 {
			t.Errorf("DaysOld = %d, future dates must clamp to 0", got.DaysOld)
		}
		if got.StalenessScore != 0 {
			t.Errorf("StalenessScore = %v, expected 0", got.StalenessScore)
		}
	})
}

// TestFreshnessBucket tests the age bucket boundaries.
func TestFreshnessBucket(t *testing.T) {
	t.Parallel()

	tests := []struct {
		days int
		want FreshnessBucket
	}{
		{0, FreshnessVeryFresh},
		{6, FreshnessVeryFresh},
		{7, FreshnessFresh},
		{29, FreshnessFresh},
		{30, FreshnessModeratelyFresh},
		{89, FreshnessModeratelyFresh},
		{90, FreshnessStale},
		{179, FreshnessStale},
		{180, FreshnessVeryStale},
		{3650, FreshnessVeryStale},
	}

	for _, tt := range tests {
		if got := freshnessBucket(tt.days); got != tt.want {
			t.Errorf("freshnessBucket(%d) = %q, want %q", tt.days, got, tt.want)
		}
	}
}
