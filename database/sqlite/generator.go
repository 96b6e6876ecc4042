package sqlite

import "github.com/populse/scandex/internal/valuetype"

// Generator maps semantic types to concrete SQLite column types and
// reports which DDL operations SQLite supports directly, mirroring
// the teacher's SQLGenerator/feature-flag split (the original
// CreateTable/AddIndex/ForeignKey machinery does not apply to
// scandex's fixed three-table schema, so only the mapping and
// feature-flag responsibilities survive here).
type Generator struct{}

func NewGenerator() *Generator { return &Generator{} }

// ColumnDDLType returns the SQLite column type backing semantic type
// t. Lists and temporal values are stored as their encoded TEXT wire
// form (§6); numeric types map to SQLite's native storage classes.
func (g *Generator) ColumnDDLType(t valuetype.SemanticType) string {
	if t.IsList() {
		return "TEXT"
	}
	switch t {
	case valuetype.Boolean, valuetype.Integer:
		return "INTEGER"
	case valuetype.Float:
		return "REAL"
	default:
		return "TEXT"
	}
}

// SupportsFeature mirrors the teacher's Driver.SupportsFeature switch,
// trimmed to the DDL operations scandex issues against SQLite.
func (g *Generator) SupportsFeature(feature string) bool {
	switch feature {
	case "ADD_COLUMN":
		return true
	case "DROP_COLUMN":
		return true // SQLite 3.35.0+, bundled by modernc.org/sqlite
	default:
		return false
	}
}

// ParameterPlaceholder returns the SQLite parameter placeholder (?),
// which is position-independent.
func (g *Generator) ParameterPlaceholder(position int) string {
	return "?"
}
