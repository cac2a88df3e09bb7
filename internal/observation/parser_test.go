package observation

import (
	"errors"
	"strings"
	"testing"
)

const sampleHTML = `<!DOCTYPE html>
<html>
<head>
<title>Fallback Title</title>
<meta property="og:title" content="Council Approves Budget">
<script src="https://securepubads.g.doubleclick.net/tag/js/gpt.js"></script>
<script>window.adConfig = {slots: 12};</script>
</head>
<body>
<h1>Council Approves Budget</h1>
<p>Residents packed the chamber for the   final vote.</p>
<a href="/minutes">Minutes</a>
<a href="https://other.example.com/wire">Wire story</a>
<a href="#top">Back to top</a>
<a href="javascript:void(0)">Noop</a>
<div id="ad-banner-top" class="leaderboard"></div>
<div class="sponsored-box"></div>
<iframe src="https://www.youtube.com/embed/abc" width="640" height="360"></iframe>
<iframe src="https://example.org/embed/map"></iframe>
<video autoplay muted><source src="https://cdn.example.org/clip.mp4"></video>
</body>
</html>`

// TestFromHTML tests extraction of every observation section from one
// snapshot.
func TestFromHTML(t *testing.T) {
	t.Parallel()

	got, err := FromHTML("https://example.org/story", strings.NewReader(sampleHTML))
	if err != nil {
		t.Fatalf("FromHTML: %v", err)
	}

	if got.Headline != "Council Approves Budget" {
		t.Errorf("Headline = %q, og:title must win", got.Headline)
	}
	if !strings.Contains(got.TextContent, "Residents packed the chamber for the final vote.") {
		t.Errorf("TextContent = %q, whitespace not collapsed", got.TextContent)
	}
	if strings.Contains(got.TextContent, "adConfig") {
		t.Error("script text leaked into TextContent")
	}

	wantLinks := []string{
		"https://example.org/minutes",
		"https://other.example.com/wire",
	}
	if len(got.Links) != len(wantLinks) {
		t.Fatalf("Links = %+v, expected %v", got.Links, wantLinks)
	}
	for i, want := range wantLinks {
		if got.Links[i].Href != want {
			t.Errorf("Links[%d] = %q, expected %q", i, got.Links[i].Href, want)
		}
	}

	if len(got.Scripts) != 2 {
		t.Fatalf("Scripts = %+v, expected 2", got.Scripts)
	}
	if !got.Scripts[0].IsExternal || got.Scripts[0].Src == "" {
		t.Errorf("Scripts[0] = %+v, expected external gpt.js", got.Scripts[0])
	}
	if got.Scripts[1].IsExternal || !strings.Contains(got.Scripts[1].InlineContentSample, "adConfig") {
		t.Errorf("Scripts[1] = %+v, expected inline sample", got.Scripts[1])
	}

	if len(got.Iframes) != 2 {
		t.Fatalf("Iframes = %+v, expected 2", got.Iframes)
	}
	if got.Iframes[0].BoundingBox.Width() != 640 || got.Iframes[0].BoundingBox.Height() != 360 {
		t.Errorf("iframe box = %+v, expected 640x360 from attributes", got.Iframes[0].BoundingBox)
	}

	// the YouTube iframe plus the native video element
	if len(got.VideoElements) != 2 {
		t.Fatalf("VideoElements = %+v, expected 2", got.VideoElements)
	}
	if _, ok := got.VideoElements[1].Attributes["autoplay"]; !ok {
		t.Errorf("video attributes = %v, autoplay missing", got.VideoElements[1].Attributes)
	}

	if len(got.AdElements) != 2 {
		t.Fatalf("AdElements = %+v, expected 2", got.AdElements)
	}
	if got.AdElements[0].ID != "ad-banner-top" {
		t.Errorf("AdElements[0].ID = %q", got.AdElements[0].ID)
	}
	if got.AdElements[1].ClassName != "sponsored-box" {
		t.Errorf("AdElements[1].ClassName = %q", got.AdElements[1].ClassName)
	}
}

// TestFromHTMLEmptyDocument tests the empty snapshot sentinel.
func TestFromHTMLEmptyDocument(t *testing.T) {
	t.Parallel()

	_, err := FromHTML("https://example.org/", strings.NewReader(""))
	if !errors.Is(err, ErrEmptyDocument) {
		t.Errorf("err = %v, expected ErrEmptyDocument", err)
	}
}

// TestFromHTMLBadURL tests the page URL error path.
func TestFromHTMLBadURL(t *testing.T) {
	t.Parallel()

	if _, err := FromHTML("://broken", strings.NewReader(sampleHTML)); err == nil {
		t.Error("FromHTML accepted an unparseable page url")
	}
}
