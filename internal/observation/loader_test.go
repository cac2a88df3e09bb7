package observation

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// TestDecodeNormalizesText tests NFC normalization of decoded text.
func TestDecodeNormalizesText(t *testing.T) {
	t.Parallel()

	// "café" with a combining acute accent (NFD form).
	input := `{"url":"https://example.org/story","text_content":"café review","headline":"café"}`

	got, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got.TextContent != "café review" {
		t.Errorf("TextContent = %q, expected composed form", got.TextContent)
	}
	if got.Headline != "café" {
		t.Errorf("Headline = %q, expected composed form", got.Headline)
	}
	if got.URL != "https://example.org/story" {
		t.Errorf("URL = %q", got.URL)
	}
}

// TestDecodeMissingURL tests the missing url sentinel.
func TestDecodeMissingURL(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader(`{"text_content":"hello"}`))
	if !errors.Is(err, ErrMissingURL) {
		t.Errorf("err = %v, expected ErrMissingURL", err)
	}
}

// TestDecodeInvalidJSON tests malformed input.
func TestDecodeInvalidJSON(t *testing.T) {
	t.Parallel()

	_, err := Decode(strings.NewReader("{not json"))
	if err == nil {
		t.Error("Decode accepted malformed JSON")
	}
}

// TestLoadFromFile tests the disk path.
func TestLoadFromFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "obs.json")
	payload := `{
		"url": "https://example.org/story",
		"text_content": "The council approved the budget.",
		"ad_elements": [
			{"id": "ad-top", "bounding_box": {"top": 100, "left": 0, "right": 300, "bottom": 350}}
		],
		"network_requests": [
			{"url": "https://ads.pubmatic.com/bid", "method": "GET", "timestamp_ms": 120}
		]
	}`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatal(err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got.AdElements) != 1 || got.AdElements[0].ID != "ad-top" {
		t.Errorf("AdElements = %+v", got.AdElements)
	}
	if got.AdElements[0].BoundingBox.Area() != 300*250 {
		t.Errorf("ad area = %v, expected 75000", got.AdElements[0].BoundingBox.Area())
	}
	if len(got.NetworkRequests) != 1 || got.NetworkRequests[0].TimestampMs != 120 {
		t.Errorf("NetworkRequests = %+v", got.NetworkRequests)
	}
}

// TestLoadMissingFile tests the open error path.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := Load(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("Load accepted a missing file")
	}
}
