// Package parsers turns rule documents into domain.Rule records.
//
// A Parser dispatches to a codec by file extension, validates required
// fields and attaches a content reference so the rule body can be
// resolved lazily.
package parsers
