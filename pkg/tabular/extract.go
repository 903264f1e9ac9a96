package tabular

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/usestring/treetab/pkg/document"
)

var (
	// ErrNoColumns reports an explicit schema with nothing to extract.
	ErrNoColumns = errors.New("explicit schema has no columns")
	// ErrSchemaMismatch reports explicit column names and types of
	// different lengths.
	ErrSchemaMismatch = errors.New("column names and types differ in length")
	// ErrDepthExceeded reports extraction recursion past
	// Options.MaxValueDepth.
	ErrDepthExceeded = errors.New("value extraction exceeded recursion limit")
)

var (
	dateLayouts      = []string{"2006-01-02", "01/02/2006", "2006/01/02", "01-02-2006"}
	timeLayouts      = []string{"15:04:05", "15:04"}
	timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"}
)

// ExtractRows walks the record-bearing nodes of the document and produces
// one row of typed values per record, in column order. Structural absences
// become NULLs and conversion failures become string values; a malformed
// value never aborts the document.
func ExtractRows(doc *document.Document, columns []Column, opts Options) ([][]Value, error) {
	return extractRows(doc, columns, opts, false)
}

// ExtractRowsWithSchema extracts against caller-supplied columns, bypassing
// analysis and inference entirely and trusting the declared types. Attribute
// values are resolved by probing the record node for an attribute matching
// the column name before falling back to child elements.
func ExtractRowsWithSchema(doc *document.Document, names []string, types []*Type, opts Options) ([][]Value, error) {
	if len(names) != len(types) {
		return nil, ErrSchemaMismatch
	}
	if len(names) == 0 {
		return nil, ErrNoColumns
	}

	columns := make([]Column, len(names))
	for i, name := range names {
		columns[i] = Column{Name: name, Type: types[i]}
	}
	return extractRows(doc, columns, opts, true)
}

func extractRows(doc *document.Document, columns []Column, opts Options, explicit bool) ([][]Value, error) {
	if len(columns) == 0 {
		return nil, ErrNoColumns
	}

	selector := opts.RecordSelector
	if selector == "" {
		selector = opts.RootSelector
	}
	anchor, err := resolveAnchor(doc, selector)
	if err != nil {
		return nil, err
	}
	if anchor == nil {
		return nil, nil
	}

	rows := make([][]Value, 0, len(anchor.Children))
	for _, record := range anchor.Children {
		row := make([]Value, len(columns))
		for i, col := range columns {
			v, err := columnValue(record, col, opts, explicit)
			if err != nil {
				return nil, fmt.Errorf("column %q: %w", col.Name, err)
			}
			row[i] = v
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func columnValue(record *document.Node, col Column, opts Options, explicit bool) (Value, error) {
	if col.IsAttribute {
		return attributeValue(record, col, opts), nil
	}

	if explicit {
		if v, ok := record.Attr(col.Name); ok {
			return convertValue(v, col.Type, opts), nil
		}
	}

	child := record.Child(col.Name)
	if child == nil {
		return nullValueFor(col.Type), nil
	}
	return extractValue(child, col.Type, opts, 0)
}

func attributeValue(record *document.Node, col Column, opts Options) Value {
	owner := record
	if col.AttrOwner != "" && col.AttrOwner != record.Name {
		owner = record.Child(col.AttrOwner)
	}

	// AttributeMap columns gather every attribute of the owner into one
	// record value.
	if col.Type.Kind == KindRecord && col.AttrName == "" {
		fields := make([]FieldValue, len(col.Type.Fields))
		for i, f := range col.Type.Fields {
			fields[i] = FieldValue{Name: f.Name, Value: Null()}
			if owner != nil {
				if v, ok := owner.Attr(f.Name); ok {
					fields[i].Value = Value{Kind: KindString, Str: v}
				}
			}
		}
		return Value{Kind: KindRecord, Record: fields}
	}

	if owner == nil {
		return Null()
	}
	v, ok := owner.Attr(col.AttrName)
	if !ok {
		return Null()
	}
	return convertValue(v, col.Type, opts)
}

// extractValue materializes one node against a declared type. Recursion is
// bounded by opts.MaxValueDepth: inference depth limits what the schema can
// model, but an explicit schema can demand arbitrary nesting.
func extractValue(node *document.Node, t *Type, opts Options, depth int) (Value, error) {
	if depth > opts.MaxValueDepth {
		return Null(), ErrDepthExceeded
	}

	switch t.Kind {
	case KindList:
		return extractList(node, t.Elem, opts, depth)
	case KindRecord:
		return extractRecord(node, t, opts, depth)
	case KindFragment:
		return Value{Kind: KindString, Str: document.SerializeChildren(node)}, nil
	case KindDocument:
		return Value{Kind: KindString, Str: document.Serialize(node)}, nil
	default:
		if node.HasChildren() {
			// A container under a scalar column: serialize with the same
			// fragment/wrapped policy inference applies, so extraction
			// stays consistent with what the schema promised.
			if len(node.Attrs) == 0 {
				return Value{Kind: KindString, Str: document.SerializeChildren(node)}, nil
			}
			return Value{Kind: KindString, Str: document.Serialize(node)}, nil
		}
		return convertValue(cleanText(node.Text), t, opts), nil
	}
}

// extractRecord returns a record with exactly the declared fields; absent
// source elements yield NULL fields, never omissions.
func extractRecord(node *document.Node, t *Type, opts Options, depth int) (Value, error) {
	fields := make([]FieldValue, len(t.Fields))
	for i, f := range t.Fields {
		fields[i] = FieldValue{Name: f.Name, Value: Null()}

		child := node.Child(f.Name)
		if child == nil {
			if f.Name == opts.TextKey {
				fields[i].Value = convertValue(cleanText(node.Text), f.Type, opts)
			}
			continue
		}

		v, err := extractValue(child, f.Type, opts, depth+1)
		if err != nil {
			return Null(), err
		}
		fields[i].Value = v
	}
	return Value{Kind: KindRecord, Record: fields}, nil
}

// extractList materializes every element child regardless of name; analysis
// already established homogeneity. No children yields an empty list, not NULL.
func extractList(node *document.Node, elem *Type, opts Options, depth int) (Value, error) {
	values := make([]Value, 0, len(node.Children))
	for _, child := range node.Children {
		v, err := extractValue(child, elem, opts, depth+1)
		if err != nil {
			return Null(), err
		}
		values = append(values, v)
	}
	return Value{Kind: KindList, List: values}, nil
}

// nullValueFor resolves a structurally absent column: NULL for scalars, an
// empty list, or a record with every declared field present but NULL.
func nullValueFor(t *Type) Value {
	switch t.Kind {
	case KindList:
		return Value{Kind: KindList, List: []Value{}}
	case KindRecord:
		fields := make([]FieldValue, len(t.Fields))
		for i, f := range t.Fields {
			fields[i] = FieldValue{Name: f.Name, Value: Null()}
		}
		return Value{Kind: KindRecord, Record: fields}
	default:
		return Null()
	}
}

// convertValue converts element text to the declared scalar type. Failures
// fall back to returning the text as a string value rather than erroring:
// data is never lost to a conversion error, at the cost of the declared type
// not being a hard per-value guarantee.
func convertValue(text string, t *Type, opts Options) Value {
	if text == "" {
		if opts.EmptyElements == EmptyString {
			return Value{Kind: KindString, Str: ""}
		}
		return Null()
	}

	switch t.Kind {
	case KindBoolean:
		switch strings.ToLower(text) {
		case "true", "yes", "1", "on":
			return Value{Kind: KindBoolean, Bool: true}
		case "false", "no", "0", "off":
			return Value{Kind: KindBoolean, Bool: false}
		}

	case KindInteger, KindBigint:
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return Value{Kind: t.Kind, Int: n}
		}

	case KindDouble:
		if f, err := strconv.ParseFloat(text, 64); err == nil {
			return Value{Kind: KindDouble, Float: f}
		}

	case KindDate:
		if ts, ok := parseAny(text, dateLayouts); ok {
			return Value{Kind: KindDate, Time: ts}
		}

	case KindTime:
		if ts, ok := parseAny(text, timeLayouts); ok {
			return Value{Kind: KindTime, Time: ts}
		}

	case KindTimestamp:
		if ts, ok := parseAny(text, timestampLayouts); ok {
			return Value{Kind: KindTimestamp, Time: ts}
		}

	default:
		return Value{Kind: KindString, Str: text}
	}

	return Value{Kind: KindString, Str: text}
}

func parseAny(text string, layouts []string) (time.Time, bool) {
	for _, layout := range layouts {
		if ts, err := time.Parse(layout, text); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
