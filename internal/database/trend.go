package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/publintel/mfascan/internal/assess"
	"github.com/publintel/mfascan/internal/model"
)

// ErrInsufficientHistory is returned when a URL has fewer than two
// stored audits, too few to compare.
var ErrInsufficientHistory = errors.New("trend analysis requires at least two audits")

// Trend directions. A site is only called improving or worsening when
// the score moved more than trendChangeBound between the first and the
// latest audit; smaller movement is reported as stable.
const (
	TrendImproving = "improving"
	TrendStable    = "stable"
	TrendWorsening = "worsening"
)

// trendChangeBound is the minimum absolute score change that counts as
// a real trend rather than scan-to-scan noise.
const trendChangeBound = 0.1

// Trend summarizes how a site's risk moved across its audit history.
type Trend struct {
	URL       string `json:"url"`
	Direction string `json:"direction"`

	// ChangeRate is the latest overall score minus the first.
	ChangeRate float64 `json:"change_rate"`

	FirstScore  float64 `json:"first_score"`
	LatestScore float64 `json:"latest_score"`

	FirstScannedAt  time.Time `json:"first_scanned_at"`
	LatestScannedAt time.Time `json:"latest_scanned_at"`

	// FactorChanges holds the per-factor deltas between the first and
	// latest audit, keyed by factor name.
	FactorChanges map[string]float64 `json:"factor_changes"`

	// Samples is the number of audits the trend covers.
	Samples int `json:"samples"`
}

// ComputeTrend derives a trend from audit records ordered oldest
// first, the order GetAuditHistory returns.
func ComputeTrend(records []assess.Record) (*Trend, error) {
	if len(records) < 2 {
		return nil, ErrInsufficientHistory
	}

	first := records[0]
	latest := records[len(records)-1]

	change := model.Round3(latest.OverallRiskScore - first.OverallRiskScore)

	direction := TrendStable
	switch {
	case change > trendChangeBound:
		direction = TrendWorsening
	case change < -trendChangeBound:
		direction = TrendImproving
	}

	return &Trend{
		URL:             latest.URL,
		Direction:       direction,
		ChangeRate:      change,
		FirstScore:      first.OverallRiskScore,
		LatestScore:     latest.OverallRiskScore,
		FirstScannedAt:  first.ScannedAt,
		LatestScannedAt: latest.ScannedAt,
		FactorChanges: map[string]float64{
			"pattern_risk":    model.Round3(latest.PatternRisk - first.PatternRisk),
			"refresh_risk":    model.Round3(latest.RefreshRisk - first.RefreshRisk),
			"visibility_risk": model.Round3(latest.VisibilityRisk - first.VisibilityRisk),
			"density_risk":    model.Round3(latest.DensityRisk - first.DensityRisk),
			"video_risk":      model.Round3(latest.VideoRisk - first.VideoRisk),
			"content_risk":    model.Round3(latest.ContentRisk - first.ContentRisk),
		},
		Samples: len(records),
	}, nil
}

// Trend loads the audit history for a URL and computes its trend.
func (adb *AuditDB) Trend(ctx context.Context, url string) (*Trend, error) {
	records, err := adb.GetAuditHistory(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("failed to load audit history: %w", err)
	}
	return ComputeTrend(records)
}
