// Package registry implements the Schema Registry (§4.2): the catalog
// of declared columns, persisted in the backend's metadata table and
// kept in sync with the typed columns physically present on the
// current (and, when enabled, initial) document tables.
package registry

import "github.com/populse/scandex/internal/valuetype"

// Column is the reified descriptor returned by Get/List, matching the
// design note that column lookups return a descriptor rather than a
// bare type tag: callers need the description and the optional
// ancillary metadata fields alongside the semantic type.
type Column struct {
	Name        string
	Type        valuetype.SemanticType
	Description string

	// Visible, Origin, Unit, and DefaultValue are the extra metadata
	// fields carried over from the original implementation's column
	// catalog (supplemented feature, see SPEC_FULL.md). All optional;
	// the zero value means "unset".
	Visible      bool
	Origin       string
	Unit         string
	DefaultValue string
}
