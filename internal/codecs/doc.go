// Package codecs provides rule document format decoders.
//
// Each subpackage implements driven.RuleCodec for one format:
//
//   - yaml: YAML documents (.yaml, .yml)
//   - toml: TOML documents (.toml)
//   - markdown: Markdown with YAML front matter (.md, .markdown)
//
// Codecs only decode. Required-field validation and Rule construction
// happen in the parsers package.
package codecs
