/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package schema

import (
	"bytes"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type file struct {
	Schemas []*Schema `yaml:"schemas"`
}

// Parse reads schema declarations from YAML:
//
//	schemas:
//	  - name: EventProject
//	    timestamps: true
//	    fields:
//	      - {name: title, kind: string, required: true}
//	      - {name: updatedBy, kind: objectId, ref: User, defaultFrom: createdBy}
func Parse(r io.Reader) ([]*Schema, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f file
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode schemas: %w", err)
	}

	seen := make(map[string]bool, len(f.Schemas))
	for _, s := range f.Schemas {
		if err := s.compile(); err != nil {
			return nil, err
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("schema %s declared twice", s.Name)
		}
		seen[s.Name] = true
	}
	return f.Schemas, nil
}

// ParseBytes is Parse over an in-memory document.
func ParseBytes(b []byte) ([]*Schema, error) {
	return Parse(bytes.NewReader(b))
}

// Index returns the schemas keyed by name.
func Index(schemas []*Schema) map[string]*Schema {
	out := make(map[string]*Schema, len(schemas))
	for _, s := range schemas {
		out[s.Name] = s
	}
	return out
}
