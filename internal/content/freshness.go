package content

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// FreshnessBucket classifies content age.
type FreshnessBucket string

const (
	// FreshnessVeryFresh covers content under 7 days old.
	FreshnessVeryFresh FreshnessBucket = "very_fresh"
	// FreshnessFresh covers content under 30 days old.
	FreshnessFresh FreshnessBucket = "fresh"
	// FreshnessModeratelyFresh covers content under 90 days old.
	FreshnessModeratelyFresh FreshnessBucket = "moderately_fresh"
	// FreshnessStale covers content under 180 days old.
	FreshnessStale FreshnessBucket = "stale"
	// FreshnessVeryStale covers content 180 days old or older.
	FreshnessVeryStale FreshnessBucket = "very_stale"
	// FreshnessUnknown is used when no date could be extracted.
	FreshnessUnknown FreshnessBucket = "unknown"
)

// FreshnessResult holds the extracted publish date and staleness score.
type FreshnessResult struct {
	// PublishDate is the extracted date, zero when none was found.
	PublishDate time.Time `json:"publish_date,omitempty"`

	// DateFound reports whether any extraction strategy succeeded.
	DateFound bool `json:"date_found"`

	// Source names the extraction strategy that produced the date.
	Source string `json:"source,omitempty"`

	// DaysOld is floor((now - date) / 24h). -1 when no date was found.
	DaysOld int `json:"days_old"`

	// Bucket classifies the age.
	Bucket FreshnessBucket `json:"bucket"`

	// StalenessScore is clamp(daysOld/365, 0, 1); 0.5 when no date was
	// found, so unknown ages contribute a neutral signal rather than
	// reading as brand new.
	StalenessScore float64 `json:"staleness_score"`
}

// Date extraction patterns, tried in order; the first strategy that
// yields a parseable date wins.
var (
	// "Published on January 1, 2020" / "Updated: 3 March 2021"
	keywordDatePattern = regexp.MustCompile(`(?i)(?:published|updated|posted)(?:\s+on)?\s*:?\s*([A-Za-z]+ \d{1,2},? \d{4}|\d{1,2} [A-Za-z]+ \d{4}|\d{4}-\d{2}-\d{2})`)

	// ISO 8601 date (with optional time suffix).
	isoDatePattern = regexp.MustCompile(`\b(\d{4}-\d{2}-\d{2})(?:[T ]\d{2}:\d{2})?`)

	// US-style MM/DD/YYYY.
	usDatePattern = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)

	// "January 2020" month-year mentions.
	monthYearPattern = regexp.MustCompile(`(?i)\b(january|february|march|april|may|june|july|august|september|october|november|december)\s+(\d{4})\b`)

	// "3 days ago", "2 weeks ago", "1 month ago", "a year ago".
	relativePattern = regexp.MustCompile(`(?i)\b(\d+|an?)\s+(minute|hour|day|week|month|year)s?\s+ago\b`)
)

// monthDayYearLayouts are attempted against keyword-captured dates.
var monthDayYearLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"2 January 2006",
	"2006-01-02",
}

// FreshnessAnalyzer extracts publish/update dates from page text and
// scores staleness. MFA farms republish old evergreen content; a page
// presenting a years-old article as current news is a meaningful risk
// contribution.
//
// The reference clock is injected so reports are reproducible: scoring
// the same observation twice yields identical output.
type FreshnessAnalyzer struct {
	// now is the reference time used for age computation.
	now time.Time
}

// NewFreshnessAnalyzer creates a FreshnessAnalyzer anchored to the
// given reference time.
func NewFreshnessAnalyzer(now time.Time) *FreshnessAnalyzer {
	return &FreshnessAnalyzer{now: now.UTC()}
}

// Analyze extracts the most credible publish date from text and scores
// its staleness.
func (a *FreshnessAnalyzer) Analyze(text string) FreshnessResult {
	date, source, ok := a.extractDate(text)
	if !ok {
		return FreshnessResult{
			DaysOld:        -1,
			Bucket:         FreshnessUnknown,
			StalenessScore: 0.5,
		}
	}

	days := int(a.now.Sub(date).Hours() / 24)
	if days < 0 {
		days = 0
	}

	staleness := float64(days) / 365
	if staleness > 1 {
		staleness = 1
	}

	return FreshnessResult{
		PublishDate:    date,
		DateFound:      true,
		Source:         source,
		DaysOld:        days,
		Bucket:         freshnessBucket(days),
		StalenessScore: staleness,
	}
}

// freshnessBucket maps an age in days to its bucket.
func freshnessBucket(days int) FreshnessBucket {
	switch {
	case days < 7:
		return FreshnessVeryFresh
	case days < 30:
		return FreshnessFresh
	case days < 90:
		return FreshnessModeratelyFresh
	case days < 180:
		return FreshnessStale
	default:
		return FreshnessVeryStale
	}
}

// extractDate runs the ordered extraction strategies.
func (a *FreshnessAnalyzer) extractDate(text string) (time.Time, string, bool) {
	// 1. Keyword-anchored: "Published on ...". Most credible because
	// the keyword ties the date to the article itself rather than to
	// some other mention on the page.
	if m := keywordDatePattern.FindStringSubmatch(text); m != nil {
		if d, ok := parseLoose(m[1]); ok {
			return d, "keyword", true
		}
	}

	// 2. ISO 8601.
	if m := isoDatePattern.FindStringSubmatch(text); m != nil {
		if d, err := time.Parse("2006-01-02", m[1]); err == nil {
			return d.UTC(), "iso8601", true
		}
	}

	// 3. US MM/DD/YYYY.
	if m := usDatePattern.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if month >= 1 && month <= 12 && day >= 1 && day <= 31 {
			return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), "us_date", true
		}
	}

	// 4. Month-year mention, anchored to the first of the month.
	if m := monthYearPattern.FindStringSubmatch(text); m != nil {
		if d, err := time.Parse("January 2006", titleCase(m[1])+" "+m[2]); err == nil {
			return d.UTC(), "month_year", true
		}
	}

	// 5. Relative: "3 days ago".
	if m := relativePattern.FindStringSubmatch(text); m != nil {
		n := 1
		if v, err := strconv.Atoi(m[1]); err == nil {
			n = v
		}
		var unit time.Duration
		switch strings.ToLower(m[2]) {
		case "minute":
			unit = time.Minute
		case "hour":
			unit = time.Hour
		case "day":
			unit = 24 * time.Hour
		case "week":
			unit = 7 * 24 * time.Hour
		case "month":
			unit = 30 * 24 * time.Hour
		case "year":
			unit = 365 * 24 * time.Hour
		}
		return a.now.Add(-time.Duration(n) * unit), "relative", true
	}

	return time.Time{}, "", false
}

// parseLoose tries the known textual layouts against a captured date.
func parseLoose(raw string) (time.Time, bool) {
	cleaned := strings.TrimSpace(raw)
	for _, layout := range monthDayYearLayouts {
		if d, err := time.Parse(layout, titleCaseFirst(cleaned)); err == nil {
			return d.UTC(), true
		}
	}
	return time.Time{}, false
}

// titleCase uppercases the first letter of a month name.
func titleCase(month string) string {
	if month == "" {
		return month
	}
	return strings.ToUpper(month[:1]) + strings.ToLower(month[1:])
}

// titleCaseFirst normalizes the leading month name of a captured date
// without touching the rest.
func titleCaseFirst(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return s
	}
	if fields[0][0] >= 'a' && fields[0][0] <= 'z' {
		fields[0] = titleCase(fields[0])
	}
	// "2 January 2006" style has the month second.
	if len(fields) >= 2 && fields[1][0] >= 'a' && fields[1][0] <= 'z' {
		fields[1] = titleCase(fields[1])
	}
	return strings.Join(fields, " ")
}
