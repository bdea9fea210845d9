// Package catalog owns the device parameter table.
//
// Ownership boundary:
// - alias (name -> number) lookup
// - per-parameter value kind, sub-target names and enum tables
// - loading both tables from JSON, YAML or TOML files
package catalog
