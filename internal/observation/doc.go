// Package observation loads crawl observations for the scoring engine.
//
// The engine never touches the network: a headless-browser collaborator
// captures pages and hands them over as observation JSON. This package
// decodes and sanity-checks those files, and can also build a partial
// observation from a raw HTML snapshot when no instrumented capture is
// available.
package observation
