/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package accessor implements lookup-or-fail reads: fetch a record by identity and turn a miss
// into a localized not-found error naming the field that held the dangling reference.
package accessor

import (
	"context"
	"fmt"

	"github.com/suparena/eventgraph/errors"
	"github.com/suparena/eventgraph/models"
)

// Finder is the point-lookup half of a store. It returns nil and no error on a miss.
type Finder[T any] interface {
	FindOne(ctx context.Context, id models.ID) (*T, error)
}

// NotFound describes the error raised on a miss.
type NotFound struct {
	Descriptor errors.Descriptor
	Translator errors.Translator
}

// Resolve fetches the record with the given id. A zero id or a miss yields the descriptor's
// NotFoundError with param as its Param; store failures are returned wrapped.
func Resolve[T any](ctx context.Context, finder Finder[T], id models.ID, param string, nf NotFound) (*T, error) {
	if id.IsZero() {
		return nil, nf.Descriptor.NotFound(ctx, nf.Translator, param)
	}
	record, err := finder.FindOne(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("resolve %s %s: %w", param, id.Hex(), err)
	}
	if record == nil {
		return nil, nf.Descriptor.NotFound(ctx, nf.Translator, param)
	}
	return record, nil
}

// ResolveReference reads the identifier held in parent's field and resolves it. The error on a
// miss names field.
func ResolveReference[T any](ctx context.Context, finder Finder[T], parent models.Referencer, field string, nf NotFound) (*T, error) {
	id, err := parent.Reference(field)
	if err != nil {
		return nil, err
	}
	return Resolve(ctx, finder, id, field, nf)
}
