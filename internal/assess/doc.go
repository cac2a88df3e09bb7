// Package assess merges the content and ad-behavior analysis results
// into the final risk assessment for one page.
package assess
