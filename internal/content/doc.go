// Package content scores the text portion of a crawl observation for
// Made-for-Advertising signals: templated or low-information writing,
// near-duplicate content, clickbait framing, machine-generated prose,
// and staleness.
//
// The package is organized as six leaf analyzers (entropy, similarity,
// readability, clickbait, AI likelihood, freshness) composed by a
// single Analyzer that produces the content-quality fingerprint and
// risk bucket. Every analyzer is a pure function of the observation
// text and configuration: identical inputs yield identical reports.
package content
