package tabular

import (
	"github.com/invopop/jsonschema"
)

// JSONSchema renders a column list as a JSON Schema object, one property per
// column in schema order. Useful for handing an inferred schema to tools
// that speak JSON Schema rather than this package's type model.
func JSONSchema(columns []Column) *jsonschema.Schema {
	schema := &jsonschema.Schema{
		Type:       "object",
		Properties: jsonschema.NewProperties(),
	}
	for _, col := range columns {
		schema.Properties.Set(col.Name, typeSchema(col.Type))
	}
	return schema
}

func typeSchema(t *Type) *jsonschema.Schema {
	switch t.Kind {
	case KindBoolean:
		return &jsonschema.Schema{Type: "boolean"}
	case KindInteger, KindBigint:
		return &jsonschema.Schema{Type: "integer"}
	case KindDouble:
		return &jsonschema.Schema{Type: "number"}
	case KindDate:
		return &jsonschema.Schema{Type: "string", Format: "date"}
	case KindTime:
		return &jsonschema.Schema{Type: "string", Format: "time"}
	case KindTimestamp:
		return &jsonschema.Schema{Type: "string", Format: "date-time"}
	case KindList:
		return &jsonschema.Schema{Type: "array", Items: typeSchema(t.Elem)}
	case KindRecord:
		s := &jsonschema.Schema{
			Type:       "object",
			Properties: jsonschema.NewProperties(),
		}
		for _, f := range t.Fields {
			s.Properties.Set(f.Name, typeSchema(f.Type))
		}
		return s
	default:
		return &jsonschema.Schema{Type: "string"}
	}
}
