// Package tabular infers relational schemas from parsed XML/HTML trees and
// extracts rows of typed values against them. Inference and extraction are
// two independent passes over the same tree: the shape analysis drives column
// typing, and extraction materializes values consistent with what inference
// promised.
package tabular

import (
	"strings"
	"time"
)

// Kind identifies a semantic type or value variant.
type Kind uint8

const (
	KindNull Kind = iota
	KindBoolean
	KindInteger
	KindBigint
	KindDouble
	KindDate
	KindTime
	KindTimestamp
	KindString
	KindList
	KindRecord
	// KindFragment is an opaque serialization of an element's content
	// without the wrapping tag. Values carry markup as strings.
	KindFragment
	// KindDocument is an opaque serialization including the wrapping tag
	// and its attributes.
	KindDocument
)

var kindNames = map[Kind]string{
	KindNull:      "NULL",
	KindBoolean:   "BOOLEAN",
	KindInteger:   "INTEGER",
	KindBigint:    "BIGINT",
	KindDouble:    "DOUBLE",
	KindDate:      "DATE",
	KindTime:      "TIME",
	KindTimestamp: "TIMESTAMP",
	KindString:    "VARCHAR",
	KindList:      "LIST",
	KindRecord:    "RECORD",
	KindFragment:  "FRAGMENT",
	KindDocument:  "DOCUMENT",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "UNKNOWN"
}

// Type is a semantic column type: a scalar kind, LIST with an element type,
// or RECORD with ordered named fields.
type Type struct {
	Kind   Kind
	Elem   *Type   // list element type
	Fields []Field // record fields, in inferred order
}

// Field is one named member of a record type.
type Field struct {
	Name string
	Type *Type
}

// Scalar returns a scalar type of the given kind.
func Scalar(k Kind) *Type { return &Type{Kind: k} }

// ListOf returns a list type with the given element type.
func ListOf(elem *Type) *Type { return &Type{Kind: KindList, Elem: elem} }

// RecordOf returns a record type with the given fields.
func RecordOf(fields ...Field) *Type { return &Type{Kind: KindRecord, Fields: fields} }

// IsScalar reports whether the type has no nested structure.
func (t *Type) IsScalar() bool {
	return t.Kind != KindList && t.Kind != KindRecord
}

// String renders the type, e.g. LIST<RECORD<name VARCHAR, age INTEGER>>.
func (t *Type) String() string {
	switch t.Kind {
	case KindList:
		return "LIST<" + t.Elem.String() + ">"
	case KindRecord:
		var b strings.Builder
		b.WriteString("RECORD<")
		for i, f := range t.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name)
			b.WriteByte(' ')
			b.WriteString(f.Type.String())
		}
		b.WriteByte('>')
		return b.String()
	default:
		return t.Kind.String()
	}
}

// Value is a typed extraction result. The Kind tag selects the populated
// variant; KindNull carries nothing. A value's kind can legally disagree with
// its column's declared type in exactly one way: conversion failures surface
// as KindString rather than erroring (see convertValue).
type Value struct {
	Kind   Kind
	Bool   bool
	Int    int64
	Float  float64
	Time   time.Time
	Str    string
	List   []Value
	Record []FieldValue
}

// FieldValue is one named member of a record value.
type FieldValue struct {
	Name  string
	Value Value
}

// Null returns the NULL value.
func Null() Value { return Value{Kind: KindNull} }

// IsNull reports whether the value is NULL.
func (v Value) IsNull() bool { return v.Kind == KindNull }

// Interface converts the value to plain Go data suitable for JSON encoding.
// Temporal kinds render in their canonical text forms; records become maps.
func (v Value) Interface() any {
	switch v.Kind {
	case KindNull:
		return nil
	case KindBoolean:
		return v.Bool
	case KindInteger, KindBigint:
		return v.Int
	case KindDouble:
		return v.Float
	case KindDate:
		return v.Time.Format("2006-01-02")
	case KindTime:
		return v.Time.Format("15:04:05")
	case KindTimestamp:
		return v.Time.Format(time.RFC3339)
	case KindList:
		out := make([]any, len(v.List))
		for i, e := range v.List {
			out[i] = e.Interface()
		}
		return out
	case KindRecord:
		out := make(map[string]any, len(v.Record))
		for _, f := range v.Record {
			out[f.Name] = f.Value.Interface()
		}
		return out
	default:
		return v.Str
	}
}

// Column describes one inferred or caller-declared output column.
type Column struct {
	Name        string
	Type        *Type
	IsAttribute bool
	// AttrOwner and AttrName locate attribute-sourced columns: the element
	// carrying the attribute and the attribute's own name. Concatenating
	// them into Name and splitting later would corrupt names containing
	// underscores, so both are kept explicitly.
	AttrOwner string
	AttrName  string
	// Selector is a path-like locator for the column's source nodes.
	Selector string
	// Frequency is the element's share of sibling occurrences during
	// analysis. Used only for outlier pruning; not meaningful downstream.
	Frequency float64
}
