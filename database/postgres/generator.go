package postgres

import "github.com/populse/scandex/internal/valuetype"

// Generator maps semantic types to concrete Postgres column types,
// mirroring the teacher's per-backend SQLGenerator split.
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// ColumnDDLType returns the Postgres column type backing semantic
// type t. Lists and temporal values are stored as their encoded TEXT
// wire form (§6), same as the SQLite adapter, so the two backends
// stay byte-for-byte interchangeable at the file/dump level.
func (g *Generator) ColumnDDLType(t valuetype.SemanticType) string {
	if t.IsList() {
		return "TEXT"
	}
	switch t {
	case valuetype.Boolean:
		// Stored as the same 0/1 integer Encode produces (rather than
		// native BOOLEAN) so the wire representation is identical
		// across both backends.
		return "INTEGER"
	case valuetype.Integer:
		return "BIGINT"
	case valuetype.Float:
		return "DOUBLE PRECISION"
	default:
		return "TEXT"
	}
}
