package model

import "time"

// CrawlObservation is an immutable snapshot of one page load, produced
// by an external headless-browser crawler and consumed by the scoring
// engine. The engine never fetches or navigates pages itself.
//
// Invariant: all timestamps within one observation share the same clock
// origin (relative milliseconds or absolute epoch milliseconds), so
// interval math between network requests, DOM mutations, and scroll
// events is meaningful.
type CrawlObservation struct {
	// URL is the page address that was loaded.
	URL string `json:"url"`

	// TimestampUTC is when the snapshot was captured.
	TimestampUTC time.Time `json:"timestamp_utc"`

	// TextContent is the visible page text.
	TextContent string `json:"text_content"`

	// Headline is the page headline, empty when none was extracted.
	Headline string `json:"headline,omitempty"`

	// Viewport is the browser viewport at capture time. A zero-value
	// viewport means "unknown"; analyzers fall back to 1920x1080.
	Viewport Viewport `json:"viewport"`

	// AdElements are DOM elements classified as ad slots by the crawler.
	AdElements []AdElement `json:"ad_elements,omitempty"`

	// Iframes are all iframe elements on the page.
	Iframes []IframeRef `json:"iframes,omitempty"`

	// Scripts are all script elements on the page.
	Scripts []ScriptRef `json:"scripts,omitempty"`

	// NetworkRequests are outbound requests recorded during the load.
	NetworkRequests []NetworkRequest `json:"network_requests,omitempty"`

	// MutationLog records DOM mutations observed during the load.
	MutationLog []DomMutation `json:"mutation_log,omitempty"`

	// ScrollEvents records user-simulated scroll timestamps.
	ScrollEvents []ScrollEvent `json:"scroll_events,omitempty"`

	// VideoElements are video players and video-hosting iframes.
	VideoElements []VideoRef `json:"video_elements,omitempty"`

	// Links are anchor hrefs found on the page.
	Links []Link `json:"links,omitempty"`
}

// Viewport is the browser viewport size in CSS pixels.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// IsZero reports whether the viewport was not captured.
func (v Viewport) IsZero() bool {
	return v.Width <= 0 || v.Height <= 0
}

// BoundingBox is an element rectangle with a top-left origin.
// Well-formed boxes have right>left and bottom>top; degenerate boxes
// are legal and have zero area, never negative.
type BoundingBox struct {
	Top    float64 `json:"top"`
	Left   float64 `json:"left"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns the box width, clamped to zero for degenerate boxes.
func (b BoundingBox) Width() float64 {
	if w := b.Right - b.Left; w > 0 {
		return w
	}
	return 0
}

// Height returns the box height, clamped to zero for degenerate boxes.
func (b BoundingBox) Height() float64 {
	if h := b.Bottom - b.Top; h > 0 {
		return h
	}
	return 0
}

// Area returns the box area in square pixels. Degenerate boxes score
// as zero area.
func (b BoundingBox) Area() float64 {
	return b.Width() * b.Height()
}

// Intersect returns the overlapping rectangle of two boxes and whether
// they overlap at all. Touching edges do not count as overlap.
func (b BoundingBox) Intersect(other BoundingBox) (BoundingBox, bool) {
	out := BoundingBox{
		Top:    max(b.Top, other.Top),
		Left:   max(b.Left, other.Left),
		Right:  min(b.Right, other.Right),
		Bottom: min(b.Bottom, other.Bottom),
	}
	if out.Right <= out.Left || out.Bottom <= out.Top {
		return BoundingBox{}, false
	}
	return out, true
}

// VerticalMidpoint returns the y coordinate of the box center, used for
// above/below-fold classification.
func (b BoundingBox) VerticalMidpoint() float64 {
	return b.Top + b.Height()/2
}

// AdElement is a DOM element the crawler classified as an ad slot.
type AdElement struct {
	ID          string      `json:"id"`
	ClassName   string      `json:"class_name"`
	BoundingBox BoundingBox `json:"bounding_box"`

	// ZIndex is the computed z-index. Negative values indicate the ad
	// is rendered behind other content, a hidden-ad fraud signal.
	ZIndex int `json:"z_index"`

	// IframeDepth is the nesting depth of the ad iframe. Depths above
	// three are treated as deliberately obscured.
	IframeDepth int `json:"iframe_depth"`

	DisplayNone      bool   `json:"display_none"`
	VisibilityHidden bool   `json:"visibility_hidden"`
	Src              string `json:"src,omitempty"`
}

// IframeRef is an iframe element reference.
type IframeRef struct {
	Src         string            `json:"src"`
	BoundingBox BoundingBox       `json:"bounding_box"`
	Attributes  map[string]string `json:"attributes,omitempty"`
}

// ScriptRef is a script element reference. External scripts carry a
// Src; inline scripts carry a content sample.
type ScriptRef struct {
	Src                 string `json:"src,omitempty"`
	InlineContentSample string `json:"inline_content_sample,omitempty"`
	IsExternal          bool   `json:"is_external"`
}

// NetworkRequest is one outbound request observed during the page load.
type NetworkRequest struct {
	URL         string `json:"url"`
	Method      string `json:"method"`
	StatusCode  int    `json:"status_code"`
	TimestampMs int64  `json:"timestamp_ms"`
	SizeBytes   int64  `json:"size_bytes"`
}

// MutationType classifies a DOM mutation record.
type MutationType string

const (
	// MutationAdded is a node insertion.
	MutationAdded MutationType = "added"
	// MutationRemoved is a node removal.
	MutationRemoved MutationType = "removed"
	// MutationAttributeChanged is an attribute change on an existing node.
	MutationAttributeChanged MutationType = "attribute_changed"
)

// DomMutation is one DOM mutation observed during the page load.
type DomMutation struct {
	Type           MutationType      `json:"type"`
	TimestampMs    int64             `json:"timestamp_ms"`
	TargetSelector string            `json:"target_selector"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

// ScrollEvent is a recorded scroll timestamp.
type ScrollEvent struct {
	TimestampMs int64 `json:"timestamp_ms"`
}

// VideoRef is a video element or video-hosting iframe.
type VideoRef struct {
	Src         string            `json:"src"`
	Attributes  map[string]string `json:"attributes,omitempty"`
	BoundingBox BoundingBox       `json:"bounding_box"`
}

// Link is an anchor reference found on the page.
type Link struct {
	Href string `json:"href"`
}
