package config

// SiteOverride holds per-site threshold overrides. Publishers with
// unusual but legitimate layouts (e.g., video portals) can be given
// looser limits without loosening the global defaults.
//
// Pointer fields distinguish "not set" from an explicit zero so an
// override of 0 is rejected by validation rather than silently ignored.
type SiteOverride struct {
	// AdDensityThreshold overrides the global ad density cutoff.
	AdDensityThreshold *float64 `yaml:"adDensityThreshold,omitempty"`

	// MinVisibilityRatio overrides the global viewability cutoff.
	MinVisibilityRatio *float64 `yaml:"minVisibilityRatio,omitempty"`

	// RefreshThresholdMs overrides the refresh-sequence interval.
	RefreshThresholdMs *int64 `yaml:"refreshThresholdMs,omitempty"`

	// MaxAllowedVideoPlayers overrides the video-stuffing cutoff.
	MaxAllowedVideoPlayers *int `yaml:"maxAllowedVideoPlayers,omitempty"`

	// ClickbaitThreshold overrides the clickbait score cutoff.
	ClickbaitThreshold *float64 `yaml:"clickbaitThreshold,omitempty"`

	// StaleDays overrides the stale-content cutoff.
	StaleDays *int `yaml:"staleDays,omitempty"`
}

// apply copies the set override fields onto cfg.
func (s SiteOverride) apply(cfg *Config) {
	if s.AdDensityThreshold != nil {
		cfg.AdDensityThreshold = *s.AdDensityThreshold
	}
	if s.MinVisibilityRatio != nil {
		cfg.MinVisibilityRatio = *s.MinVisibilityRatio
	}
	if s.RefreshThresholdMs != nil {
		cfg.RefreshThresholdMs = *s.RefreshThresholdMs
	}
	if s.MaxAllowedVideoPlayers != nil {
		cfg.MaxAllowedVideoPlayers = *s.MaxAllowedVideoPlayers
	}
	if s.ClickbaitThreshold != nil {
		cfg.ClickbaitThreshold = *s.ClickbaitThreshold
	}
	if s.StaleDays != nil {
		cfg.StaleDays = *s.StaleDays
	}
}

// File represents the structure of the .mfascan configuration file.
type File struct {
	// Sites maps hostnames to their threshold overrides.
	// Keys are bare hostnames (e.g., "example.com").
	Sites map[string]SiteOverride `yaml:"sites,omitempty"`

	// Defaults contains overrides applied to every site unless a
	// site-specific entry sets the same field.
	Defaults SiteOverride `yaml:"defaults,omitempty"`
}

// SiteOverrides returns the merged overrides for a hostname: the file
// defaults with the site-specific entry layered on top.
func (cf *File) SiteOverrides(host string) SiteOverride {
	result := cf.Defaults

	site, ok := cf.Sites[host]
	if !ok {
		return result
	}
	if site.AdDensityThreshold != nil {
		result.AdDensityThreshold = site.AdDensityThreshold
	}
	if site.MinVisibilityRatio != nil {
		result.MinVisibilityRatio = site.MinVisibilityRatio
	}
	if site.RefreshThresholdMs != nil {
		result.RefreshThresholdMs = site.RefreshThresholdMs
	}
	if site.MaxAllowedVideoPlayers != nil {
		result.MaxAllowedVideoPlayers = site.MaxAllowedVideoPlayers
	}
	if site.ClickbaitThreshold != nil {
		result.ClickbaitThreshold = site.ClickbaitThreshold
	}
	if site.StaleDays != nil {
		result.StaleDays = site.StaleDays
	}
	return result
}
