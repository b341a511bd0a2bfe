/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package datastore

import (
	"context"

	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/schema"
)

// DataStore persists documents of type T. Every method returns plain copies; callers never hold
// references into the store.
type DataStore[T any] interface {
	// FindOne returns the document with the given id, or nil and no error when there is none.
	FindOne(ctx context.Context, id models.ID) (*T, error)

	// Find returns every document whose fields equal the filter's values.
	Find(ctx context.Context, filter Filter) ([]T, error)

	// Insert stores a new document. A zero _id is replaced by a fresh one; createdAt and
	// updatedAt are stamped by the store.
	Insert(ctx context.Context, entity T) (*T, error)

	// FindOneAndUpdate applies update to the document atomically and returns the result.
	FindOneAndUpdate(ctx context.Context, id models.ID, update Update) (*T, error)
}

// Filter matches documents by top-level field. A scalar field matches when equal to the value;
// a list field matches when it contains the value.
type Filter map[string]any

// Update describes a single-document write. All parts are applied together or not at all.
type Update struct {
	// Set assigns fields. A nil value clears the field.
	Set map[string]any
	// AddToSet appends a value to a list field unless already present.
	AddToSet map[string]any
	// Inc adds to numeric fields, treating a missing field as zero.
	Inc map[string]int
	// Backfills are default rules evaluated against the document after the changes above.
	Backfills []schema.Backfill
	// Condition must match the current document for the update to apply.
	Condition Filter
	// Exclude must not match the current document for the update to apply.
	Exclude Filter
}

// IsEmpty reports whether u changes nothing.
func (u Update) IsEmpty() bool {
	return len(u.Set) == 0 && len(u.AddToSet) == 0 && len(u.Inc) == 0
}
