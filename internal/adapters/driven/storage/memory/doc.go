// Package memory provides in-memory implementations of the driven storage ports.
//
// The rule index lives only for the life of the process; it is rebuilt
// from the configured sources on every start.
package memory
