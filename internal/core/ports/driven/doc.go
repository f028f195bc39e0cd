// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - RuleLoader: Enumerates and parses all documents behind one source kind
//   - RuleParser: Turns one document into one Rule
//   - RuleCodec: Decodes one document format (YAML, TOML, Markdown)
//   - RuleStore: The concurrent rule metadata index
//
// # Optional Interfaces
//
//   - WatchableLoader: Loaders that can push change events after the initial load
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, loader, or parser package
package driven
