package tabular

import (
	"github.com/usestring/treetab/pkg/document"
)

// InferSchema analyzes the document and returns an ordered column list.
// The result is deterministic for a fixed tree and options, and is never
// empty: documents with no analyzable structure fall back to an opaque
// schema. The only error cases are invalid selector expressions.
func InferSchema(doc *document.Document, opts Options) ([]Column, error) {
	anchor, err := resolveAnchor(doc, opts.RootSelector)
	if err != nil {
		return nil, err
	}
	if anchor == nil {
		return fallbackColumns(), nil
	}

	shapes, names := analyzeStructure(anchor, opts)
	if len(shapes) == 0 {
		// Nothing below the anchor was modeled (typically DepthLimit 0):
		// the whole anchor is one opaque document column.
		return []Column{{
			Name:      anchor.Name,
			Type:      Scalar(KindDocument),
			Selector:  "/" + anchor.Name,
			Frequency: 1.0,
		}}, nil
	}

	total := 0
	for _, s := range shapes {
		total += s.count
	}

	var columns []Column
	for _, name := range names {
		s := shapes[name]
		freq := s.frequency(total)
		if freq < opts.OutlierThreshold {
			// Rare one-off elements are noise, not schema members.
			continue
		}

		if t, ok := columnType(s, shapes, opts); ok {
			columns = append(columns, Column{
				Name:      s.name,
				Type:      t,
				Selector:  "//" + s.name,
				Frequency: freq,
			})
		}

		columns = append(columns, attributeColumns(s, freq, opts)...)
	}

	if len(columns) == 0 {
		return fallbackColumns(), nil
	}
	return columns, nil
}

// fallbackColumns is the opaque identifier + content schema returned when no
// usable structure exists, so callers always get at least one column.
func fallbackColumns() []Column {
	return []Column{
		{Name: "filename", Type: Scalar(KindString), Frequency: 1.0},
		{Name: "content", Type: Scalar(KindDocument), Frequency: 1.0},
	}
}

func resolveAnchor(doc *document.Document, selector string) (*document.Node, error) {
	if selector == "" {
		return doc.Root, nil
	}
	node, err := document.QueryOne(doc, selector)
	if err != nil {
		return nil, err
	}
	if node == nil {
		return doc.Root, nil
	}
	return node, nil
}

// columnType decides the type for one shape record, or reports that the
// element contributes no column of its own.
func columnType(s *shapeRecord, shapes map[string]*shapeRecord, opts Options) (*Type, bool) {
	if opts.forcesList(s.name) {
		if t, ok := forcedListType(s, shapes, opts); ok {
			return t, true
		}
	}

	if !s.hasChildren {
		if s.hasText {
			return Scalar(inferScalarType(s.samples, opts)), true
		}
		if len(s.attrCounts) > 0 {
			// Placeholder column; the attribute sub-columns are emitted
			// separately.
			return Scalar(KindString), true
		}
		return nil, false
	}

	// Container: structured tier first, then fragment/wrapped opaque.
	if t, ok := inferNestedType(s, shapes, opts, make(map[string]bool)); ok {
		return t, true
	}
	if len(s.attrCounts) == 0 {
		// Unwrapping loses nothing when the container has no attributes.
		return Scalar(KindFragment), true
	}
	return Scalar(KindDocument), true
}

// inferNestedType attempts LIST or RECORD typing for a container shape.
// The homogeneous-single-child-name rule is the sole path to LIST typing.
// visiting breaks recursion on self-nested element names.
func inferNestedType(s *shapeRecord, shapes map[string]*shapeRecord, opts Options, visiting map[string]bool) (*Type, bool) {
	if visiting[s.name] {
		return nil, false
	}
	visiting[s.name] = true
	defer delete(visiting, s.name)

	switch {
	case s.isArrayContainer():
		elem, ok := elementType(shapes[s.childOrder[0]], shapes, opts, visiting)
		if !ok {
			// Partial lists are not acceptable: list homogeneity is a
			// load-bearing invariant, so failure propagates.
			return nil, false
		}
		return ListOf(elem), true

	case s.isRecordContainer():
		var fields []Field
		if s.hasText && opts.TextKey != "" {
			fields = append(fields, Field{Name: opts.TextKey, Type: Scalar(KindString)})
		}
		for _, name := range s.childOrder {
			ft, ok := elementType(shapes[name], shapes, opts, visiting)
			if !ok {
				// Partial records are acceptable; skip the field.
				continue
			}
			fields = append(fields, Field{Name: name, Type: ft})
		}
		if len(fields) == 0 {
			return nil, false
		}
		return RecordOf(fields...), true

	default:
		return nil, false
	}
}

// elementType resolves the type of a child shape: scalar detection for text
// leaves, recursive nested inference for containers.
func elementType(s *shapeRecord, shapes map[string]*shapeRecord, opts Options, visiting map[string]bool) (*Type, bool) {
	if s == nil {
		// Beyond the analysis depth limit; no statistics to type from.
		return nil, false
	}
	if !s.hasChildren {
		if s.hasText {
			return Scalar(inferScalarType(s.samples, opts)), true
		}
		return nil, false
	}
	return inferNestedType(s, shapes, opts, visiting)
}

// forcedListType types an element named in Options.ForceList as a list even
// when its child was only ever observed once.
func forcedListType(s *shapeRecord, shapes map[string]*shapeRecord, opts Options) (*Type, bool) {
	if !s.hasChildren || len(s.childOrder) != 1 {
		return nil, false
	}
	elem, ok := elementType(shapes[s.childOrder[0]], shapes, opts, make(map[string]bool))
	if !ok {
		return nil, false
	}
	return ListOf(elem), true
}

func attributeColumns(s *shapeRecord, freq float64, opts Options) []Column {
	if len(s.attrOrder) == 0 {
		return nil
	}

	switch opts.Attributes {
	case AttributeDiscard:
		return nil

	case AttributeMap:
		fields := make([]Field, 0, len(s.attrOrder))
		for _, attr := range s.attrOrder {
			fields = append(fields, Field{Name: attr, Type: Scalar(KindString)})
		}
		return []Column{{
			Name:        s.name + "_attributes",
			Type:        RecordOf(fields...),
			IsAttribute: true,
			AttrOwner:   s.name,
			Selector:    "//" + s.name,
			Frequency:   freq,
		}}

	default: // AttributeColumns, AttributePrefixed
		columns := make([]Column, 0, len(s.attrOrder))
		for _, attr := range s.attrOrder {
			name := s.name + "_" + attr
			if opts.Attributes == AttributePrefixed {
				name = opts.AttributePrefix + name
			}
			columns = append(columns, Column{
				Name:        name,
				Type:        Scalar(KindString),
				IsAttribute: true,
				AttrOwner:   s.name,
				AttrName:    attr,
				Selector:    "//" + s.name + "/@" + attr,
				Frequency:   freq,
			})
		}
		return columns
	}
}
