package adbehavior

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/publintel/mfascan/internal/config"
	"github.com/publintel/mfascan/internal/model"
)

// videoPlatformDomains maps a source-host substring to the platform
// name. Any iframe or video element whose source matches one of these
// counts as a video player.
var videoPlatformDomains = map[string]string{
	"youtube.com":     "YouTube",
	"youtu.be":        "YouTube",
	"vimeo.com":       "Vimeo",
	"dailymotion.com": "Dailymotion",
	"jwplayer.com":    "JW Player",
	"jwpltx.com":      "JW Player",
	"brid.tv":         "Brid.TV",
	"primis.tech":     "Primis",
	"spotxchange.com": "SpotX",
	"springserve.com": "SpringServe",
	"connatix.com":    "Connatix",
	"ex.co":           "EX.CO",
	"sendtonews.com":  "Send2News",
	"stn.video":       "Send2News",
	"vidazoo.com":     "Vidazoo",
	"aniview.com":     "Aniview",
}

// mfaVideoNetworks is the subset of video platforms whose presence
// correlates with MFA monetization: out-stream vendors that render ads
// without any editorial video content.
var mfaVideoNetworks = map[string]bool{
	"Primis":      true,
	"Vidazoo":     true,
	"Aniview":     true,
	"Connatix":    true,
	"EX.CO":       true,
	"Send2News":   true,
	"SpotX":       true,
	"SpringServe": true,
}

// stickyTokenPattern matches class/id tokens of floating players.
var stickyTokenPattern = regexp.MustCompile(`(?i)(sticky|float|corner|pip)`)

// Out-stream placement heuristic: a player injected into the article
// body sits well below the masthead but not in the far footer, and is
// shorter than a real content player.
const (
	outstreamMinTop    = 200.0
	outstreamMaxTop    = 2000.0
	outstreamMaxHeight = 400.0
)

// VideoPlayer is one detected player.
type VideoPlayer struct {
	Platform      string `json:"platform"`
	Src           string `json:"src"`
	Autoplay      bool   `json:"autoplay"`
	MutedAutoplay bool   `json:"muted_autoplay"`
	Sticky        bool   `json:"sticky"`
	OutStream     bool   `json:"out_stream"`
	MfaNetwork    bool   `json:"mfa_network"`
}

// VideoResult holds the video monetization findings of one page.
type VideoResult struct {
	Players []VideoPlayer `json:"players,omitempty"`

	PlayerCount        int  `json:"player_count"`
	AutoplayCount      int  `json:"autoplay_count"`
	MutedAutoplayCount int  `json:"muted_autoplay_count"`
	StickyCount        int  `json:"sticky_count"`
	OutStreamCount     int  `json:"out_stream_count"`
	MfaNetworkCount    int  `json:"mfa_network_count"`
	StuffingDetected   bool `json:"stuffing_detected"`

	// RiskScore is the stepped video risk in [0,1].
	RiskScore float64 `json:"risk_score"`

	Report *model.AnalyzerReport `json:"-"`
}

// VideoAnalyzer detects video-player stuffing, forced autoplay, and
// sticky out-stream units.
type VideoAnalyzer struct {
	cfg config.Config
}

// NewVideoAnalyzer creates a VideoAnalyzer.
func NewVideoAnalyzer(cfg config.Config) *VideoAnalyzer {
	return &VideoAnalyzer{cfg: cfg}
}

// Analyze classifies every video element and video-hosting iframe.
func (v *VideoAnalyzer) Analyze(obs *model.CrawlObservation) *VideoResult {
	report := model.NewAnalyzerReport("video")
	out := &VideoResult{Report: report}

	for _, el := range obs.VideoElements {
		if p, ok := v.classify(el.Src, el.Attributes, el.BoundingBox); ok {
			out.Players = append(out.Players, p)
		}
	}
	for _, frame := range obs.Iframes {
		if p, ok := v.classify(frame.Src, frame.Attributes, frame.BoundingBox); ok {
			out.Players = append(out.Players, p)
		}
	}

	out.PlayerCount = len(out.Players)
	if out.PlayerCount == 0 {
		report.Summary["status"] = "no_video_players"
		return out
	}

	for _, p := range out.Players {
		if p.MutedAutoplay {
			out.MutedAutoplayCount++
		} else if p.Autoplay {
			out.AutoplayCount++
		}
		if p.Sticky {
			out.StickyCount++
		}
		if p.OutStream {
			out.OutStreamCount++
		}
		if p.MfaNetwork {
			out.MfaNetworkCount++
		}
	}

	out.StuffingDetected = out.PlayerCount > v.cfg.MaxAllowedVideoPlayers
	out.RiskScore = v.score(out)

	v.fillReport(out)
	return out
}

// classify tests one source against the platform list and extracts
// behavior signals.
func (v *VideoAnalyzer) classify(src string, attrs map[string]string, box model.BoundingBox) (VideoPlayer, bool) {
	platform, ok := matchVideoPlatform(src)
	if !ok {
		return VideoPlayer{}, false
	}

	p := VideoPlayer{
		Platform:   platform,
		Src:        src,
		MfaNetwork: mfaVideoNetworks[platform],
	}

	autoplay, muted := autoplaySignals(src, attrs)
	p.Autoplay = autoplay
	p.MutedAutoplay = autoplay && muted

	p.Sticky = stickySignals(attrs)
	p.OutStream = box.Top >= outstreamMinTop && box.Top <= outstreamMaxTop &&
		box.Height() > 0 && box.Height() < outstreamMaxHeight

	return p, true
}

// matchVideoPlatform tests a source URL host against the platform
// domain list. Suffix matching on the parsed host avoids substring
// misfires such as "index.com" matching "ex.co".
func matchVideoPlatform(src string) (string, bool) {
	if src == "" {
		return "", false
	}
	u, err := url.Parse(src)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	for domain, name := range videoPlatformDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return name, true
		}
	}
	return "", false
}

// autoplaySignals extracts autoplay and muted flags from URL
// parameters and DOM attributes.
func autoplaySignals(src string, attrs map[string]string) (autoplay, muted bool) {
	if u, err := url.Parse(src); err == nil {
		q := u.Query()
		switch q.Get("autoplay") {
		case "1", "true":
			autoplay = true
		}
		if q.Get("auto_play") == "1" {
			autoplay = true
		}
		if q.Get("muted") == "1" || q.Get("mute") == "1" {
			muted = true
		}
	}

	if _, ok := attrs["autoplay"]; ok {
		autoplay = true
	}
	if _, ok := attrs["muted"]; ok {
		muted = true
	}
	return autoplay, muted
}

// stickySignals detects floating players from CSS position or
// class/id naming.
func stickySignals(attrs map[string]string) bool {
	if style := strings.ToLower(attrs["style"]); strings.Contains(style, "position:fixed") ||
		strings.Contains(style, "position: fixed") ||
		strings.Contains(style, "position:sticky") ||
		strings.Contains(style, "position: sticky") {
		return true
	}
	return stickyTokenPattern.MatchString(attrs["class"]) || stickyTokenPattern.MatchString(attrs["id"])
}

// score applies the stepped video risk contributions, clamped to 1.
func (v *VideoAnalyzer) score(out *VideoResult) float64 {
	risk := 0.0

	if out.PlayerCount > v.cfg.MaxAllowedVideoPlayers {
		risk += 0.4
	} else if out.PlayerCount > 2 {
		risk += 0.1
	}

	if out.MutedAutoplayCount > 0 {
		risk += 0.3
	} else if out.AutoplayCount > 0 {
		risk += 0.15
	}

	if out.StickyCount > 0 {
		risk += 0.15
	}
	if out.MfaNetworkCount > 0 {
		risk += 0.2
	}

	return model.Clamp01(risk)
}

// fillReport populates the video report.
func (v *VideoAnalyzer) fillReport(out *VideoResult) {
	r := out.Report
	r.Metrics["player_count"] = out.PlayerCount
	r.Metrics["autoplay_count"] = out.AutoplayCount
	r.Metrics["muted_autoplay_count"] = out.MutedAutoplayCount
	r.Metrics["sticky_count"] = out.StickyCount
	r.Metrics["out_stream_count"] = out.OutStreamCount
	r.Metrics["mfa_network_count"] = out.MfaNetworkCount
	r.Metrics["risk_score"] = model.Round3(out.RiskScore)
	r.Summary["stuffing_detected"] = out.StuffingDetected

	if out.StuffingDetected {
		r.AddProblem(model.SeverityHigh,
			fmt.Sprintf("%d video players exceeds the limit of %d", out.PlayerCount, v.cfg.MaxAllowedVideoPlayers),
			"Remove surplus video players; player stuffing floods the page with video ad requests.")
	}
	if out.MutedAutoplayCount > 0 {
		r.AddProblem(model.SeverityMedium,
			fmt.Sprintf("%d muted autoplay players", out.MutedAutoplayCount),
			"Disable muted autoplay; it exists to mint video impressions nobody watches.")
	}
	if out.StickyCount > 0 {
		r.AddProblem(model.SeverityMedium,
			fmt.Sprintf("%d sticky video players", out.StickyCount),
			"Unpin floating players or provide a close control.")
	}
}
