// Package config holds the scoring thresholds and CLI options for
// mfascan. Thresholds are validated once at construction time; every
// analyzer receives an immutable copy, so a bad threshold never
// surfaces mid-analysis.
package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
)

// Default scoring thresholds.
// These values mirror the heuristics the audit worker was tuned with
// in production; changing any of them changes which sites get flagged,
// so adjustments should be validated against a labeled corpus first.
const (
	// DefaultAdDensityThreshold is the fraction of viewport pixels that
	// ads may cover before the page is considered ad-heavy. 0.30 tracks
	// the "better ads" industry guidance of keeping ad coverage under
	// 30% of the initial viewport.
	DefaultAdDensityThreshold = 0.30

	// DefaultMinVisibilityRatio is the fraction of an ad's own area that
	// must intersect the viewport for the ad to count as viewable.
	// 0.5 is the MRC display standard (50% of pixels in view).
	DefaultMinVisibilityRatio = 0.50

	// DefaultRefreshThresholdMs is the maximum gap between two requests
	// to the same ad slot for them to count as a refresh sequence.
	// Legitimate lazy loads are slower than 15 seconds; programmatic
	// refresh is almost always faster.
	DefaultRefreshThresholdMs = 15000

	// DefaultLazyLoadThreshold is the number of scroll-triggered ad
	// injections tolerated before the page counts as injection-heavy.
	DefaultLazyLoadThreshold = 5

	// DefaultMaxAllowedVideoPlayers is the number of embedded video
	// players tolerated before video stuffing is flagged. Legitimate
	// article pages rarely embed more than three players.
	DefaultMaxAllowedVideoPlayers = 3

	// DefaultLowEntropyThreshold is the normalized Shannon entropy below
	// which text is considered templated or repetitive.
	DefaultLowEntropyThreshold = 0.35

	// DefaultMinSimilarity is the SimHash similarity at or above which
	// two documents count as near-duplicates.
	DefaultMinSimilarity = 0.85

	// DefaultClickbaitThreshold is the weighted clickbait score above
	// which a headline/body counts as clickbait. An earlier detector
	// variant shipped with 0.5; 0.4 is the canonical value.
	DefaultClickbaitThreshold = 0.4

	// DefaultStaleDays is the content age in days after which content
	// counts as stale.
	DefaultStaleDays = 90

	// DefaultVeryStaleDays is the content age in days after which
	// staleness contributes to the content risk score.
	DefaultVeryStaleDays = 180

	// DefaultViewportWidth and DefaultViewportHeight are the fallback
	// viewport when the crawler did not record one.
	DefaultViewportWidth  = 1920
	DefaultViewportHeight = 1080

	// DefaultFoldLine is the y coordinate separating above-the-fold from
	// below-the-fold ad placements for the density split.
	DefaultFoldLine = 800

	// DefaultBatchSize is the number of observations scored concurrently
	// when processing multiple input files.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "mfascan"
)

// Config holds all options for a scoring run. It is populated from CLI
// flags and defaults, validated once, and then passed by value into the
// analyzer constructors.
//
// Design decision: We use a single flat struct instead of nested
// per-analyzer structs. The threshold count is manageable, and a flat
// struct keeps flag binding and the site-override merge simple.
type Config struct {
	// AdDensityThreshold is the maximum acceptable ad pixel coverage.
	AdDensityThreshold float64

	// MinVisibilityRatio is the MRC viewability cutoff.
	MinVisibilityRatio float64

	// RefreshThresholdMs is the maximum interval between ad-slot
	// requests that still counts as a refresh sequence.
	RefreshThresholdMs int64

	// LazyLoadThreshold is the tolerated number of scroll-triggered
	// ad injections.
	LazyLoadThreshold int

	// MaxAllowedVideoPlayers is the video-stuffing cutoff.
	MaxAllowedVideoPlayers int

	// LowEntropyThreshold is the normalized entropy cutoff for
	// templated text.
	LowEntropyThreshold float64

	// MinSimilarity is the SimHash near-duplicate cutoff.
	MinSimilarity float64

	// ClickbaitThreshold is the clickbait score cutoff.
	ClickbaitThreshold float64

	// StaleDays and VeryStaleDays are the content-age cutoffs.
	StaleDays     int
	VeryStaleDays int

	// BatchSize is the number of observations scored concurrently.
	BatchSize int

	// Verbose enables slog.LevelDebug output.
	Verbose bool

	// JSONReport and MarkdownReport select the output format.
	// Mutually exclusive; when both are false a human-readable simple
	// report is written.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path. Empty means stdout.
	ReportFile string

	// ConfigFilePath is the site-override file path. Empty triggers the
	// default search (.mfascan in cwd, then home).
	ConfigFilePath string

	// SiteConfigs holds per-site threshold overrides loaded from the
	// config file.
	SiteConfigs *File

	// DBDir is the directory for the SQLite audit history database.
	// Empty means assessments are not persisted.
	DBDir string

	// SaveToDB indicates whether to save assessments to the database.
	// Automatically set when DBDir is configured.
	SaveToDB bool

	// Inputs is the list of observation JSON files to score.
	Inputs []string
}

// NewConfig creates a Config with default thresholds.
//
// Design decision: We use a constructor instead of relying on zero
// values because every threshold default is non-zero. The constructor
// also documents what the defaults are.
func NewConfig() *Config {
	return &Config{
		AdDensityThreshold:     DefaultAdDensityThreshold,
		MinVisibilityRatio:     DefaultMinVisibilityRatio,
		RefreshThresholdMs:     DefaultRefreshThresholdMs,
		LazyLoadThreshold:      DefaultLazyLoadThreshold,
		MaxAllowedVideoPlayers: DefaultMaxAllowedVideoPlayers,
		LowEntropyThreshold:    DefaultLowEntropyThreshold,
		MinSimilarity:          DefaultMinSimilarity,
		ClickbaitThreshold:     DefaultClickbaitThreshold,
		StaleDays:              DefaultStaleDays,
		VeryStaleDays:          DefaultVeryStaleDays,
		BatchSize:              DefaultBatchSize,
	}
}

// Validate checks the configuration and fails fast on the first
// invalid threshold. This is the only error class that propagates to
// the caller; analyzer-internal failures are recorded in reports.
func (c *Config) Validate() error {
	if c.AdDensityThreshold <= 0 || c.AdDensityThreshold > 1 {
		return ErrInvalidDensityThreshold
	}
	if c.MinVisibilityRatio <= 0 || c.MinVisibilityRatio > 1 {
		return ErrInvalidVisibilityRatio
	}
	if c.RefreshThresholdMs <= 0 {
		return ErrInvalidRefreshThreshold
	}
	if c.LazyLoadThreshold < 0 {
		return ErrInvalidLazyLoadThreshold
	}
	if c.MaxAllowedVideoPlayers <= 0 {
		return ErrInvalidVideoPlayerLimit
	}
	if c.LowEntropyThreshold <= 0 || c.LowEntropyThreshold >= 1 {
		return ErrInvalidEntropyThreshold
	}
	if c.MinSimilarity <= 0 || c.MinSimilarity > 1 {
		return ErrInvalidSimilarityThreshold
	}
	if c.ClickbaitThreshold <= 0 || c.ClickbaitThreshold >= 1 {
		return ErrInvalidClickbaitThreshold
	}
	if c.StaleDays <= 0 || c.VeryStaleDays <= 0 || c.VeryStaleDays < c.StaleDays {
		return ErrInvalidStaleDays
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if len(c.Inputs) == 0 {
		return ErrNoInput
	}
	return nil
}

// ForSite returns a copy of the config with any per-site overrides from
// the loaded site-config file applied. The receiver is not modified.
func (c *Config) ForSite(host string) Config {
	out := *c
	if c.SiteConfigs == nil {
		return out
	}
	sc := c.SiteConfigs.SiteOverrides(host)
	sc.apply(&out)
	return out
}

// XDGDataDir returns the XDG data directory for mfascan.
// On Linux: ~/.local/share/mfascan
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for mfascan.
// On Linux: ~/.config/mfascan
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
