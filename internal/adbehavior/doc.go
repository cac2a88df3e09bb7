// Package adbehavior scores the advertising behavior of one crawled
// page. Seven analyzers examine ad geometry, viewability, slot refresh
// timing, scroll-triggered injection, video players, commercial
// intent, and ad-network traffic; the Aggregator merges their reports
// into a single weighted risk score.
//
// Every analyzer is a pure function of the CrawlObservation and the
// validated configuration. Empty inputs (no ads, no requests) are
// valid states with dedicated report shapes, never errors.
package adbehavior
