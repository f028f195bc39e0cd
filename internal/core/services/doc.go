// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
//   - LoaderOrchestrator: dispatches source descriptors to loaders
//   - IngestService: runs the initial load and applies watch events
//   - RuleService: the read-only query surface over the rule index
//
// Services are pure Go with no CGO.
package services
