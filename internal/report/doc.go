// Package report renders risk assessments for humans and tools.
//
// Three writers share one interface: plain text for terminals, JSON for
// tool integration, and Markdown for documentation and sharing. A
// MultiWriter fans one assessment out to several destinations.
package report
