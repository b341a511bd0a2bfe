/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"reflect"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/suparena/eventgraph/schema"
)

// Matches reports whether doc satisfies every entry of filter. Both sides are expected in
// normalized form.
func Matches(doc schema.Document, filter map[string]any) bool {
	for k, want := range filter {
		if !matchField(doc[k], want) {
			return false
		}
	}
	return true
}

// MatchesAny reports whether doc satisfies at least one entry of filter.
func MatchesAny(doc schema.Document, filter map[string]any) bool {
	for k, want := range filter {
		if matchField(doc[k], want) {
			return true
		}
	}
	return false
}

// ContainsValue reports whether list holds v.
func ContainsValue(list primitive.A, v any) bool {
	for _, item := range list {
		if valuesEqual(item, v) {
			return true
		}
	}
	return false
}

func matchField(have, want any) bool {
	if list, ok := have.(primitive.A); ok {
		if _, wantList := want.(primitive.A); !wantList {
			return ContainsValue(list, want)
		}
	}
	return valuesEqual(have, want)
}

func valuesEqual(a, b any) bool {
	if x, ok := ToInt64(a); ok {
		if y, ok := ToInt64(b); ok {
			return x == y
		}
	}
	return reflect.DeepEqual(a, b)
}

// ToInt64 widens the integer types produced by normalization.
func ToInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case int:
		return int64(n), true
	}
	return 0, false
}
