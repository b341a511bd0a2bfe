/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package memory provides an in-process implementation of datastore.DataStore for tests and
// local development.
package memory

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/suparena/eventgraph/datastore"
	"github.com/suparena/eventgraph/errors"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/schema"
)

// Store keeps documents in a map guarded by a single lock, so every write is atomic with
// respect to every other call.
type Store[T any] struct {
	mu     sync.RWMutex
	entity string
	docs   map[primitive.ObjectID]schema.Document
	order  []primitive.ObjectID
	now    func() time.Time

	insertError error
	updateError error
	findError   error
}

var _ datastore.DataStore[models.User] = (*Store[models.User])(nil)

// New creates an empty store. entity names the stored type in error messages.
func New[T any](entity string) *Store[T] {
	return &Store[T]{
		entity: entity,
		docs:   make(map[primitive.ObjectID]schema.Document),
		now:    time.Now,
	}
}

// WithClock replaces the time source used for createdAt and updatedAt.
func (s *Store[T]) WithClock(now func() time.Time) *Store[T] {
	s.now = now
	return s
}

// WithInsertError makes Insert fail with err without writing.
func (s *Store[T]) WithInsertError(err error) *Store[T] {
	s.insertError = err
	return s
}

// WithUpdateError makes FindOneAndUpdate fail with err without writing.
func (s *Store[T]) WithUpdateError(err error) *Store[T] {
	s.updateError = err
	return s
}

// WithFindError makes FindOne and Find fail with err.
func (s *Store[T]) WithFindError(err error) *Store[T] {
	s.findError = err
	return s
}

// FindOne returns the document with the given id, or nil when there is none.
func (s *Store[T]) FindOne(ctx context.Context, id models.ID) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.findError != nil {
		return nil, s.findError
	}

	s.mu.RLock()
	doc, ok := s.docs[id.ObjectID()]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return datastore.FromDocument[T](doc)
}

// Find returns matching documents in insertion order.
func (s *Store[T]) Find(ctx context.Context, filter datastore.Filter) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.findError != nil {
		return nil, s.findError
	}
	normalized, err := datastore.Normalize(filter)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	results := make([]T, 0)
	for _, id := range s.order {
		doc := s.docs[id]
		if !datastore.Matches(doc, normalized) {
			continue
		}
		v, err := datastore.FromDocument[T](doc)
		if err != nil {
			return nil, err
		}
		results = append(results, *v)
	}
	return results, nil
}

// Insert stores a new document, assigning an id when the entity has none.
func (s *Store[T]) Insert(ctx context.Context, entity T) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.insertError != nil {
		return nil, s.insertError
	}

	doc, err := datastore.ToDocument(entity)
	if err != nil {
		return nil, err
	}
	id, ok := doc[schema.FieldID].(primitive.ObjectID)
	if !ok || id.IsZero() {
		id = primitive.NewObjectID()
		doc[schema.FieldID] = id
	}
	now := s.timestamp()
	doc[schema.FieldCreatedAt] = now
	doc[schema.FieldUpdatedAt] = now

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.docs[id]; exists {
		return nil, errors.NewAlreadyExistsError(s.entity, id.Hex())
	}
	s.docs[id] = doc
	s.order = append(s.order, id)
	return datastore.FromDocument[T](doc)
}

// FindOneAndUpdate applies update under the store lock and returns the updated document.
func (s *Store[T]) FindOneAndUpdate(ctx context.Context, id models.ID, update datastore.Update) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.updateError != nil {
		return nil, s.updateError
	}

	set, err := datastore.Normalize(update.Set)
	if err != nil {
		return nil, err
	}
	addToSet, err := datastore.Normalize(update.AddToSet)
	if err != nil {
		return nil, err
	}
	condition, err := datastore.Normalize(update.Condition)
	if err != nil {
		return nil, err
	}
	exclude, err := datastore.Normalize(update.Exclude)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.docs[id.ObjectID()]
	if !ok {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("%s %s not found", s.entity, id.Hex()), errors.CodeNotFound, schema.FieldID)
	}
	if !datastore.Matches(current, condition) || datastore.MatchesAny(current, exclude) {
		return nil, errors.NewConditionFailedError("update "+s.entity, fmt.Sprintf("%v", update.Condition))
	}

	next := make(schema.Document, len(current))
	for k, v := range current {
		next[k] = v
	}
	for k, v := range set {
		if v == nil {
			delete(next, k)
			continue
		}
		next[k] = v
	}
	for k, v := range addToSet {
		list, _ := next[k].(primitive.A)
		if !datastore.ContainsValue(list, v) {
			next[k] = append(append(primitive.A{}, list...), v)
		}
	}
	for k, n := range update.Inc {
		sum, err := increment(next[k], n)
		if err != nil {
			return nil, errors.NewValidationError(k, err.Error())
		}
		next[k] = sum
	}
	next = schema.ApplyDefaults(next, update.Backfills)
	normalized, err := datastore.Normalize(next)
	if err != nil {
		return nil, err
	}
	normalized[schema.FieldUpdatedAt] = s.timestamp()

	s.docs[id.ObjectID()] = normalized
	return datastore.FromDocument[T](normalized)
}

// Count returns the number of stored documents.
func (s *Store[T]) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Clear removes all documents.
func (s *Store[T]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = make(map[primitive.ObjectID]schema.Document)
	s.order = nil
}

// BSON keeps millisecond precision; truncating here keeps returned values stable across
// backends.
func (s *Store[T]) timestamp() primitive.DateTime {
	return primitive.NewDateTimeFromTime(s.now().UTC().Truncate(time.Millisecond))
}

func increment(current any, n int) (any, error) {
	if current == nil {
		return int64(n), nil
	}
	base, ok := datastore.ToInt64(current)
	if !ok {
		return nil, fmt.Errorf("cannot increment non-numeric value %T", current)
	}
	sum := base + int64(n)
	if sum >= math.MinInt32 && sum <= math.MaxInt32 {
		return int32(sum), nil
	}
	return sum, nil
}
