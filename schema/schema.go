/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/go-openapi/strfmt"

	"github.com/suparena/eventgraph/errors"
)

// Kind is the value type of a schema field.
type Kind string

const (
	KindString   Kind = "string"
	KindObjectID Kind = "objectId"
	KindEnum     Kind = "enum"
	KindInt      Kind = "int"
	KindBool     Kind = "bool"
	KindList     Kind = "list"
)

// Storage-owned fields. Callers never write them.
const (
	FieldID        = "_id"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

// Document is the field-name keyed form of a record that rules operate on.
type Document map[string]any

// Field declares one field of an entity.
type Field struct {
	Name        string   `yaml:"name"`
	Kind        Kind     `yaml:"kind"`
	Required    bool     `yaml:"required"`
	Ref         string   `yaml:"ref,omitempty"`
	Enum        []string `yaml:"enum,omitempty"`
	Default     any      `yaml:"default,omitempty"`
	DefaultFrom string   `yaml:"defaultFrom,omitempty"`
	Format      string   `yaml:"format,omitempty"`
}

// Backfill is a default rule in declarative form: when Field is absent or null it takes the
// value of the sibling field From, or Value when From is empty.
type Backfill struct {
	Field string
	From  string
	Value any
}

// Schema is the declaration of an entity: its fields and whether the storage layer maintains
// createdAt/updatedAt.
type Schema struct {
	Name       string  `yaml:"name"`
	Timestamps bool    `yaml:"timestamps"`
	Fields     []Field `yaml:"fields"`

	index map[string]int
}

// New builds a schema and checks that its declaration is consistent.
func New(name string, timestamps bool, fields ...Field) (*Schema, error) {
	s := &Schema{Name: name, Timestamps: timestamps, Fields: fields}
	if err := s.compile(); err != nil {
		return nil, err
	}
	return s, nil
}

// MustNew is New for package-level declarations.
func MustNew(name string, timestamps bool, fields ...Field) *Schema {
	s, err := New(name, timestamps, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (s *Schema) compile() error {
	if s.Name == "" {
		return fmt.Errorf("schema: missing name")
	}
	s.index = make(map[string]int, len(s.Fields))
	for i, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s: field %d has no name", s.Name, i)
		}
		if isStorageOwned(f.Name) {
			return fmt.Errorf("schema %s: field %q is maintained by the storage layer", s.Name, f.Name)
		}
		if _, dup := s.index[f.Name]; dup {
			return fmt.Errorf("schema %s: duplicate field %q", s.Name, f.Name)
		}
		switch f.Kind {
		case KindString, KindObjectID, KindInt, KindBool, KindList:
		case KindEnum:
			if len(f.Enum) == 0 {
				return fmt.Errorf("schema %s: enum field %q has no values", s.Name, f.Name)
			}
			if f.Default != nil && !contains(f.Enum, fmt.Sprint(f.Default)) {
				return fmt.Errorf("schema %s: default %v of %q is not in %v", s.Name, f.Default, f.Name, f.Enum)
			}
		default:
			return fmt.Errorf("schema %s: field %q has unknown kind %q", s.Name, f.Name, f.Kind)
		}
		if f.Format != "" && !strfmt.Default.ContainsName(f.Format) {
			return fmt.Errorf("schema %s: field %q has unknown format %q", s.Name, f.Name, f.Format)
		}
		if f.Default != nil && f.DefaultFrom != "" {
			return fmt.Errorf("schema %s: field %q declares both default and defaultFrom", s.Name, f.Name)
		}
		s.index[f.Name] = i
	}
	for _, f := range s.Fields {
		if f.DefaultFrom == "" {
			continue
		}
		if _, ok := s.index[f.DefaultFrom]; !ok {
			return fmt.Errorf("schema %s: field %q defaults from unknown field %q", s.Name, f.Name, f.DefaultFrom)
		}
	}
	return nil
}

// Field returns the declaration of the named field.
func (s *Schema) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return Field{}, false
	}
	return s.Fields[i], true
}

// References returns the fields that hold identifiers of other entities.
func (s *Schema) References() []Field {
	var refs []Field
	for _, f := range s.Fields {
		if f.Ref != "" {
			refs = append(refs, f)
		}
	}
	return refs
}

// Backfills returns the default rules of s in declaration order.
func (s *Schema) Backfills() []Backfill {
	var out []Backfill
	for _, f := range s.Fields {
		switch {
		case f.DefaultFrom != "":
			out = append(out, Backfill{Field: f.Name, From: f.DefaultFrom})
		case f.Default != nil:
			out = append(out, Backfill{Field: f.Name, Value: f.Default})
		}
	}
	return out
}

// ApplyDefaults returns a copy of doc with the default rules of s applied.
func (s *Schema) ApplyDefaults(doc Document) Document {
	return ApplyDefaults(doc, s.Backfills())
}

// ApplyDefaults returns a copy of doc where every backfilled field that is absent or null has
// been filled. The input is not modified.
func ApplyDefaults(doc Document, backfills []Backfill) Document {
	out := make(Document, len(doc)+len(backfills))
	for k, v := range doc {
		out[k] = v
	}
	for _, b := range backfills {
		if !IsAbsent(out[b.Field]) {
			continue
		}
		if b.From != "" {
			if src := out[b.From]; !IsAbsent(src) {
				out[b.Field] = src
			}
			continue
		}
		out[b.Field] = b.Value
	}
	return out
}

// Prepare runs the create-time policy: required fields are checked first, then defaults are
// applied, then every present value is checked against its declaration.
func (s *Schema) Prepare(doc Document) (Document, error) {
	if err := s.checkRequired(doc); err != nil {
		return nil, err
	}
	out := s.ApplyDefaults(doc)
	if err := s.checkValues(out); err != nil {
		return nil, err
	}
	return out, nil
}

// Validate checks a complete document: required fields present and values in their domain.
func (s *Schema) Validate(doc Document) error {
	if err := s.checkRequired(doc); err != nil {
		return err
	}
	return s.checkValues(doc)
}

// ValidatePatch checks an update's changes. Storage-owned and unknown fields are rejected, a
// required field may not be blanked, and values must be in their domain.
func (s *Schema) ValidatePatch(changes map[string]any) error {
	for name, v := range changes {
		if isStorageOwned(name) {
			return errors.NewSchemaError(name, "field is maintained by the storage layer")
		}
		f, ok := s.Field(name)
		if !ok {
			return errors.NewSchemaError(name, fmt.Sprintf("unknown field for %s", s.Name))
		}
		if IsAbsent(v) {
			if f.Required && f.Default == nil && f.DefaultFrom == "" {
				return errors.NewSchemaError(name, "required field cannot be cleared")
			}
			continue
		}
		if err := checkValue(f, v); err != nil {
			return err
		}
	}
	return nil
}

func (s *Schema) checkRequired(doc Document) error {
	var missing []string
	for _, f := range s.Fields {
		if !f.Required || f.Default != nil || f.DefaultFrom != "" {
			continue
		}
		if IsAbsent(doc[f.Name]) {
			missing = append(missing, f.Name)
		}
	}
	switch len(missing) {
	case 0:
		return nil
	case 1:
		return errors.NewSchemaError(missing[0], "is required")
	default:
		return errors.NewSchemaError(missing[0], "is required (also missing: "+strings.Join(missing[1:], ", ")+")")
	}
}

func (s *Schema) checkValues(doc Document) error {
	for _, f := range s.Fields {
		v, ok := doc[f.Name]
		if !ok || IsAbsent(v) {
			continue
		}
		if err := checkValue(f, v); err != nil {
			return err
		}
	}
	return nil
}

func checkValue(f Field, v any) error {
	switch f.Kind {
	case KindString:
		str, ok := v.(string)
		if !ok {
			return errors.NewSchemaError(f.Name, fmt.Sprintf("expected string, got %T", v))
		}
		if f.Format != "" && !strfmt.Default.Validates(f.Format, str) {
			return errors.NewSchemaError(f.Name, fmt.Sprintf("%q is not a valid %s", str, f.Format))
		}
	case KindObjectID:
		hex, ok := objectIDHex(v)
		if !ok || !strfmt.IsBSONObjectID(hex) {
			return errors.NewSchemaError(f.Name, fmt.Sprintf("%v is not an object id", v))
		}
	case KindEnum:
		str, ok := enumString(v)
		if !ok || !contains(f.Enum, str) {
			return errors.NewSchemaError(f.Name, fmt.Sprintf("value %v is not one of %v", v, f.Enum))
		}
	case KindInt:
		switch v.(type) {
		case int, int32, int64:
		default:
			return errors.NewSchemaError(f.Name, fmt.Sprintf("expected integer, got %T", v))
		}
	case KindBool:
		if _, ok := v.(bool); !ok {
			return errors.NewSchemaError(f.Name, fmt.Sprintf("expected bool, got %T", v))
		}
	case KindList:
		if rv := reflect.ValueOf(v); rv.Kind() != reflect.Slice {
			return errors.NewSchemaError(f.Name, fmt.Sprintf("expected list, got %T", v))
		}
	}
	return nil
}

// IsAbsent reports whether v counts as unset: nil, an empty string, or a zero identifier.
func IsAbsent(v any) bool {
	switch tv := v.(type) {
	case nil:
		return true
	case string:
		return tv == ""
	case interface{ IsZero() bool }:
		return tv.IsZero()
	}
	return false
}

func objectIDHex(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, true
	case interface{ Hex() string }:
		return tv.Hex(), true
	}
	return "", false
}

func enumString(v any) (string, bool) {
	switch tv := v.(type) {
	case string:
		return tv, true
	case fmt.Stringer:
		return tv.String(), true
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), true
	}
	return "", false
}

func isStorageOwned(name string) bool {
	return name == FieldID || name == FieldCreatedAt || name == FieldUpdatedAt
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
