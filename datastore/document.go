/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/eventgraph/schema"
)

// ToDocument converts an entity into its field-name keyed form using the entity's bson tags.
// Identifiers come back as primitive.ObjectID, integers as int32/int64 and lists as primitive.A.
func ToDocument(v any) (schema.Document, error) {
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return schema.Document(m), nil
}

// FromDocument converts a document back into an entity.
func FromDocument[T any](doc schema.Document) (*T, error) {
	raw, err := bson.Marshal(bson.M(doc))
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	out := new(T)
	if err := bson.Unmarshal(raw, out); err != nil {
		return nil, fmt.Errorf("unmarshal document: %w", err)
	}
	return out, nil
}

// Normalize returns m with every value in the canonical form produced by ToDocument, so values
// supplied by callers compare equal to stored ones.
func Normalize(m map[string]any) (map[string]any, error) {
	if len(m) == 0 {
		return map[string]any{}, nil
	}
	doc, err := ToDocument(bson.M(m))
	if err != nil {
		return nil, err
	}
	return map[string]any(doc), nil
}

// NormalizeValue is Normalize for a single value.
func NormalizeValue(v any) (any, error) {
	m, err := Normalize(map[string]any{"v": v})
	if err != nil {
		return nil, err
	}
	return m["v"], nil
}
