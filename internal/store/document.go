// Package store implements the Document Store (§4.4): the current and
// initial cell tables, and the primitives the public API builds
// add_document/new_value/set_current_value/reset_current_value/
// remove_value/is_value_modified on top of.
package store

import "github.com/populse/scandex/internal/valuetype"

// Row is the dynamic, schema-shaped view of a single document's
// current values, returned by GetDocument. Unlike a Go struct, its
// shape is determined at runtime by whatever columns are declared,
// matching the design note that a document is inherently dynamic.
type Row struct {
	ID    string
	cells map[string]valuetype.Value
}

func newRow(id string) Row {
	return Row{ID: id, cells: make(map[string]valuetype.Value)}
}

// Get returns the value of column name and whether that column was
// present in the row (false means the column is not declared, not
// that the cell is null -- a declared-but-null cell returns a Value
// with Null set to true and ok set to true).
func (r Row) Get(name string) (valuetype.Value, bool) {
	v, ok := r.cells[name]
	return v, ok
}

// Columns returns the set of column names present in the row.
func (r Row) Columns() []string {
	names := make([]string, 0, len(r.cells))
	for name := range r.cells {
		names = append(names, name)
	}
	return names
}
