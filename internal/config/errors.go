package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and identify exactly
// which threshold is invalid.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to
// use errors.Is() for programmatic handling while still providing
// human-readable messages.
var (
	// ErrNoInput is returned when no observation file was provided.
	ErrNoInput = errors.New("no input specified: provide at least one observation JSON file")

	// ErrInvalidDensityThreshold is returned when the ad density
	// threshold is outside (0,1].
	ErrInvalidDensityThreshold = errors.New("invalid ad density threshold: must be in (0,1]")

	// ErrInvalidVisibilityRatio is returned when the viewability cutoff
	// is outside (0,1].
	ErrInvalidVisibilityRatio = errors.New("invalid visibility ratio: must be in (0,1]")

	// ErrInvalidRefreshThreshold is returned when the refresh interval
	// threshold is not positive.
	ErrInvalidRefreshThreshold = errors.New("invalid refresh threshold: must be positive milliseconds")

	// ErrInvalidLazyLoadThreshold is returned when the scroll-injection
	// tolerance is negative.
	ErrInvalidLazyLoadThreshold = errors.New("invalid lazy load threshold: must be non-negative")

	// ErrInvalidVideoPlayerLimit is returned when the video-stuffing
	// cutoff is not positive.
	ErrInvalidVideoPlayerLimit = errors.New("invalid video player limit: must be positive")

	// ErrInvalidEntropyThreshold is returned when the low-entropy cutoff
	// is outside (0,1).
	ErrInvalidEntropyThreshold = errors.New("invalid entropy threshold: must be in (0,1)")

	// ErrInvalidSimilarityThreshold is returned when the near-duplicate
	// cutoff is outside (0,1].
	ErrInvalidSimilarityThreshold = errors.New("invalid similarity threshold: must be in (0,1]")

	// ErrInvalidClickbaitThreshold is returned when the clickbait cutoff
	// is outside (0,1).
	ErrInvalidClickbaitThreshold = errors.New("invalid clickbait threshold: must be in (0,1)")

	// ErrInvalidStaleDays is returned when the staleness cutoffs are not
	// positive or ordered (stale <= very stale).
	ErrInvalidStaleDays = errors.New("invalid staleness days: must be positive with stale <= very stale")

	// ErrInvalidBatchSize is returned when the batch size is not positive.
	ErrInvalidBatchSize = errors.New("invalid batch size: must be positive")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified. Only one output format can be used.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
