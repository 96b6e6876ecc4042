package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/populse/scandex/internal/errs"
	"github.com/populse/scandex/internal/valuetype"
)

// columnDocument is the on-disk JSON shape of a single declared
// column, used for schema export/import. Field names match the
// original implementation's schema dump format (supplemented feature).
type columnDocument struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Description  string `json:"description,omitempty"`
	Visible      bool   `json:"visible"`
	Origin       string `json:"origin,omitempty"`
	Unit         string `json:"unit,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
}

// schemaDocument wraps the column list with a format version, mirroring
// the teacher's top-level Schema document shape.
type schemaDocument struct {
	Version int               `json:"version"`
	Columns []columnDocument  `json:"columns"`
}

const schemaDocumentVersion = 1

// columnSchemaJSON is the embedded JSON Schema against which an
// imported document is validated before being unmarshaled, following
// the teacher's two-step "validate against JSON Schema, then strict
// decode" pattern in internal/schema/loader.go.
const columnSchemaJSON = `{
	"type": "object",
	"required": ["version", "columns"],
	"additionalProperties": false,
	"properties": {
		"version": {"type": "integer"},
		"columns": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["name", "type"],
				"additionalProperties": false,
				"properties": {
					"name": {"type": "string"},
					"type": {"type": "string"},
					"description": {"type": "string"},
					"visible": {"type": "boolean"},
					"origin": {"type": "string"},
					"unit": {"type": "string"},
					"default_value": {"type": "string"}
				}
			}
		}
	}
}`

// Export serializes the full set of declared columns to the schema
// document JSON form.
func (r *Registry) Export(ctx context.Context) ([]byte, error) {
	cols, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	doc := schemaDocument{Version: schemaDocumentVersion}
	for _, c := range cols {
		doc.Columns = append(doc.Columns, columnDocument{
			Name:         c.Name,
			Type:         string(c.Type),
			Description:  c.Description,
			Visible:      c.Visible,
			Origin:       c.Origin,
			Unit:         c.Unit,
			DefaultValue: c.DefaultValue,
		})
	}
	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errs.Wrap(errs.BackendError, err, "marshaling schema document")
	}
	return out, nil
}

// ValidateSchemaDocument checks raw JSON against the embedded column
// schema without importing it, matching the teacher's
// ValidateJSONSchema entry point.
func ValidateSchemaDocument(raw []byte) error {
	_, err := decodeSchemaDocument(raw)
	return err
}

// Import declares every column in a previously exported schema
// document. Columns already declared are left untouched rather than
// re-declared, so Import is safe to call against a partially-seeded
// registry.
func (r *Registry) Import(ctx context.Context, raw []byte) error {
	doc, err := decodeSchemaDocument(raw)
	if err != nil {
		return err
	}
	for _, c := range doc.Columns {
		if _, err := r.Get(ctx, c.Name); err == nil {
			continue
		} else if !errs.Is(err, errs.UnknownColumn) {
			return err
		}
		col := Column{
			Name:         c.Name,
			Type:         valuetype.SemanticType(c.Type),
			Description:  c.Description,
			Visible:      c.Visible,
			Origin:       c.Origin,
			Unit:         c.Unit,
			DefaultValue: c.DefaultValue,
		}
		if err := r.Declare(ctx, col); err != nil {
			return fmt.Errorf("importing column %q: %w", c.Name, err)
		}
	}
	return nil
}

func decodeSchemaDocument(raw []byte) (*schemaDocument, error) {
	schemaLoader := gojsonschema.NewStringLoader(columnSchemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(raw)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "validating schema document")
	}
	if !result.Valid() {
		var msg bytes.Buffer
		msg.WriteString("schema document failed validation:\n")
		for _, desc := range result.Errors() {
			fmt.Fprintf(&msg, "- %s\n", desc)
		}
		return nil, errs.New(errs.ParseError, "%s", msg.String())
	}

	var doc schemaDocument
	decoder := json.NewDecoder(bytes.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&doc); err != nil {
		return nil, errs.Wrap(errs.ParseError, err, "decoding schema document")
	}
	for _, c := range doc.Columns {
		if !valuetype.SemanticType(c.Type).Valid() {
			return nil, errs.New(errs.InvalidArgument, "unknown semantic type %q for column %q", c.Type, c.Name)
		}
	}
	return &doc, nil
}
