package observation

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"golang.org/x/text/unicode/norm"

	"github.com/publintel/mfascan/internal/model"
)

// Load reads one observation JSON file from disk.
func Load(path string) (*model.CrawlObservation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open observation file: %w", err)
	}
	defer f.Close() //nolint:errcheck // read-only file

	obs, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return obs, nil
}

// Decode parses observation JSON from a reader and normalizes it for
// analysis.
//
// Page text arrives in whatever Unicode form the capturing browser
// produced. Everything is normalized to NFC here so the content
// analyzers see one canonical representation and identical pages hash
// identically.
func Decode(r io.Reader) (*model.CrawlObservation, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read observation: %w", err)
	}

	var obs model.CrawlObservation
	if err := json.Unmarshal(data, &obs); err != nil {
		return nil, fmt.Errorf("decode observation: %w", err)
	}
	if obs.URL == "" {
		return nil, ErrMissingURL
	}

	obs.TextContent = norm.NFC.String(obs.TextContent)
	obs.Headline = norm.NFC.String(obs.Headline)
	return &obs, nil
}
