// Package loaders holds the rule loaders, one subpackage per source kind.
//
// Each loader implements driven.RuleLoader: it validates a source
// descriptor's settings, enumerates the documents behind it and hands
// each document to a parser. Documents that fail to parse are logged
// and skipped so one bad file never hides the rest of a source.
package loaders
