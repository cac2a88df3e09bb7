// Package main provides the entry point for the mfascan CLI.
//
// mfascan scores websites for made-for-advertising (MFA) risk. It
// analyzes recorded crawl observations for ad-behavior abuse and
// low-value content, then reports a combined risk assessment.
//
// Usage:
//
//	mfascan scan <observation.json>...
//	mfascan compare <url>
//
// See --help for all available options.
package main

// main is the entry point for mfascan.
func main() {
	Execute()
}
