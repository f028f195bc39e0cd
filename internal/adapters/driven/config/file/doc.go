// Package file loads rulehub configuration from a local file.
//
// TOML is the default format. Files ending in .yaml or .yml are read as
// YAML and files ending in .json as JSON; all three share one schema.
package file
