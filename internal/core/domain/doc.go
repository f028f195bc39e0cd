// Package domain defines the core entities for rulehub.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Rule: A loaded rule record (metadata plus a lazy content reference)
//   - RuleDocument: The decoded shape of one rule document
//   - ContentRef: A lazily resolved pointer to a rule's full text
//   - SourceDescriptor: One configured origin of rules
//   - LoadReport: The per-source outcome of an ingestion run
//   - RuleChange: A change event emitted by a watching loader
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
