// Package database provides SQLite-backed persistence for audit
// results. Assessments are stored twice per row: flat columns for
// trend queries and the full JSON document for replay.
package database
