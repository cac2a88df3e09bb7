package observation

import (
	"fmt"
	"io"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"github.com/publintel/mfascan/internal/model"
)

// adSlotPattern classifies an element id or class as an ad slot.
var adSlotPattern = regexp.MustCompile(
	`(?i)(^|[^a-z])(ads?|advert(isement)?|banner|sponsor(ed)?|gpt|dfp|adsense|taboola|outbrain|mgid)([^a-z]|$)`)

// videoSourceHosts marks iframe sources worth keeping as video
// elements. The video analyzer holds the authoritative platform
// taxonomy; this list only decides which iframes are copied into the
// VideoElements slice as well.
var videoSourceHosts = []string{
	"youtube", "youtu.be", "vimeo", "dailymotion", "jwplayer",
	"brid.tv", "primis", "connatix", "vidazoo", "aniview",
}

// inlineScriptSampleLen bounds how much inline script text is kept per
// script element.
const inlineScriptSampleLen = 1024

// FromHTML builds a partial observation from a raw HTML snapshot.
//
// A static snapshot carries no layout, timing, or network data, so the
// resulting observation has empty bounding boxes, no mutation log, and
// no request list. The content analyzers and the source-based ad
// detectors still run usefully over it; the layout and timing
// detectors see it as a page without those signals.
func FromHTML(pageURL string, r io.Reader) (*model.CrawlObservation, error) {
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse page url: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	body := doc.Find("body")
	if body.Length() == 0 ||
		(body.Children().Length() == 0 && strings.TrimSpace(body.Text()) == "") {
		return nil, ErrEmptyDocument
	}

	obs := &model.CrawlObservation{URL: pageURL}

	doc.Find("script").Each(func(_ int, s *goquery.Selection) {
		obs.Scripts = append(obs.Scripts, scriptRef(s))
	})

	text := body.Clone()
	text.Find("script, style, noscript").Remove()
	obs.TextContent = norm.NFC.String(collapseWhitespace(text.Text()))
	obs.Headline = headline(doc)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		resolved := resolveHref(base, href)
		if resolved == "" {
			return
		}
		obs.Links = append(obs.Links, model.Link{Href: resolved})
	})

	doc.Find("iframe").Each(func(_ int, s *goquery.Selection) {
		frame := model.IframeRef{
			Src:         attrOr(s, "src", ""),
			Attributes:  collectAttrs(s),
			BoundingBox: attrBox(s),
		}
		obs.Iframes = append(obs.Iframes, frame)
		if isVideoSource(frame.Src) {
			obs.VideoElements = append(obs.VideoElements, model.VideoRef{
				Src:         frame.Src,
				Attributes:  frame.Attributes,
				BoundingBox: frame.BoundingBox,
			})
		}
	})

	doc.Find("video").Each(func(_ int, s *goquery.Selection) {
		src := attrOr(s, "src", "")
		if src == "" {
			src = attrOr(s.Find("source").First(), "src", "")
		}
		obs.VideoElements = append(obs.VideoElements, model.VideoRef{
			Src:         src,
			Attributes:  collectAttrs(s),
			BoundingBox: attrBox(s),
		})
	})

	doc.Find("[id], [class]").Each(func(_ int, s *goquery.Selection) {
		id := attrOr(s, "id", "")
		class := attrOr(s, "class", "")
		if !adSlotPattern.MatchString(id) && !adSlotPattern.MatchString(class) {
			return
		}
		obs.AdElements = append(obs.AdElements, model.AdElement{
			ID:          id,
			ClassName:   class,
			BoundingBox: attrBox(s),
			Src:         attrOr(s, "src", ""),
		})
	})

	return obs, nil
}

// scriptRef extracts one script element reference.
func scriptRef(s *goquery.Selection) model.ScriptRef {
	if src, ok := s.Attr("src"); ok && src != "" {
		return model.ScriptRef{Src: src, IsExternal: true}
	}
	sample := strings.TrimSpace(s.Text())
	if len(sample) > inlineScriptSampleLen {
		sample = sample[:inlineScriptSampleLen]
	}
	return model.ScriptRef{InlineContentSample: sample}
}

// headline picks the page headline: og:title, then the first h1, then
// the document title.
func headline(doc *goquery.Document) string {
	if og, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok && og != "" {
		return norm.NFC.String(strings.TrimSpace(og))
	}
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return norm.NFC.String(h1)
	}
	return norm.NFC.String(strings.TrimSpace(doc.Find("title").First().Text()))
}

// resolveHref resolves a href against the page URL, dropping fragments
// and unsupported schemes.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") ||
		strings.HasPrefix(href, "javascript:") || strings.HasPrefix(href, "mailto:") {
		return ""
	}
	u, err := base.Parse(href)
	if err != nil {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

// attrBox builds a bounding box from width/height attributes. Static
// HTML carries no layout, so the box is anchored at the origin and
// degenerate when the attributes are absent.
func attrBox(s *goquery.Selection) model.BoundingBox {
	w, _ := strconv.ParseFloat(attrOr(s, "width", ""), 64)
	h, _ := strconv.ParseFloat(attrOr(s, "height", ""), 64)
	return model.BoundingBox{Right: w, Bottom: h}
}

// collectAttrs copies the attributes the analyzers read.
func collectAttrs(s *goquery.Selection) map[string]string {
	attrs := make(map[string]string)
	for _, name := range []string{"id", "class", "style", "autoplay", "muted"} {
		if v, ok := s.Attr(name); ok {
			attrs[name] = v
		}
	}
	return attrs
}

// attrOr returns the attribute value or a fallback.
func attrOr(s *goquery.Selection, name, fallback string) string {
	if v, ok := s.Attr(name); ok {
		return v
	}
	return fallback
}

// isVideoSource tests an iframe source against the video host tokens.
func isVideoSource(src string) bool {
	lower := strings.ToLower(src)
	for _, host := range videoSourceHosts {
		if strings.Contains(lower, host) {
			return true
		}
	}
	return false
}

// collapseWhitespace squeezes runs of whitespace into single spaces,
// keeping paragraph breaks as newlines so sentence detection survives.
func collapseWhitespace(s string) string {
	var sb strings.Builder
	lastSpace := false
	for _, r := range s {
		switch {
		case r == '\n':
			sb.WriteRune('\n')
			lastSpace = true
		case r == ' ' || r == '\t' || r == '\r':
			if !lastSpace {
				sb.WriteRune(' ')
				lastSpace = true
			}
		default:
			sb.WriteRune(r)
			lastSpace = false
		}
	}
	return strings.TrimSpace(sb.String())
}
