/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eventgraph

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/suparena/eventgraph/datastore"
	"github.com/suparena/eventgraph/errors"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/registry"
	"github.com/suparena/eventgraph/schema"
)

// Model binds an entity schema to the store holding its documents. Every write goes through
// the schema's default-field policy.
type Model[T any] struct {
	name   string
	schema *schema.Schema
	store  datastore.DataStore[T]
	logger *zap.Logger
}

// Bind returns the process-wide model for s.Name, creating it on first use. Later calls, even
// concurrent ones, return the first binding and ignore their own store argument.
func Bind[T any](reg *registry.Registry, s *schema.Schema, store datastore.DataStore[T], logger *zap.Logger) (*Model[T], error) {
	if s == nil {
		return nil, fmt.Errorf("bind: nil schema")
	}
	return registry.GetOrCreateModel(reg, s.Name, func() (*Model[T], error) {
		if store == nil {
			return nil, fmt.Errorf("bind %s: nil store", s.Name)
		}
		if logger == nil {
			logger = zap.NewNop()
		}
		return &Model[T]{
			name:   s.Name,
			schema: s,
			store:  store,
			logger: logger.With(zap.String("model", s.Name)),
		}, nil
	})
}

// Name returns the entity name the model is registered under.
func (m *Model[T]) Name() string { return m.name }

// Schema returns the bound schema.
func (m *Model[T]) Schema() *schema.Schema { return m.schema }

// Store returns the backing store.
func (m *Model[T]) Store() datastore.DataStore[T] { return m.store }

// Create validates entity against the schema, fills defaults and inserts it. Caller-supplied
// timestamps are discarded.
func (m *Model[T]) Create(ctx context.Context, entity T) (*T, error) {
	doc, err := datastore.ToDocument(entity)
	if err != nil {
		return nil, err
	}
	delete(doc, schema.FieldCreatedAt)
	delete(doc, schema.FieldUpdatedAt)

	prepared, err := m.schema.Prepare(doc)
	if err != nil {
		return nil, err
	}
	ready, err := datastore.FromDocument[T](prepared)
	if err != nil {
		return nil, err
	}

	created, err := m.store.Insert(ctx, *ready)
	if err != nil {
		m.logger.Error("create failed", zap.Error(err))
		return nil, err
	}
	m.logger.Debug("created", zap.Any("id", idOf(created)))
	return created, nil
}

// FindByID returns the record with id, or nil when there is none.
func (m *Model[T]) FindByID(ctx context.Context, id models.ID) (*T, error) {
	return m.store.FindOne(ctx, id)
}

// FindOne is FindByID; it lets a model serve as an accessor.Finder.
func (m *Model[T]) FindOne(ctx context.Context, id models.ID) (*T, error) {
	return m.store.FindOne(ctx, id)
}

// Find returns the records matching filter.
func (m *Model[T]) Find(ctx context.Context, filter datastore.Filter) ([]T, error) {
	return m.store.Find(ctx, filter)
}

// Update applies a partial change set. Values are validated against the schema, identifiers may
// be given as hex strings, and default rules are re-evaluated in the same write, so clearing
// updatedBy restores it from createdBy. A status change must be a legal transition.
func (m *Model[T]) Update(ctx context.Context, id models.ID, changes map[string]any) (*T, error) {
	return m.update(ctx, id, nil, changes)
}

// UpdateLoaded is Update for a record the caller has just read. A status change is checked
// against current instead of a fresh lookup; the write stays conditional on that status.
func (m *Model[T]) UpdateLoaded(ctx context.Context, id models.ID, current *T, changes map[string]any) (*T, error) {
	return m.update(ctx, id, current, changes)
}

func (m *Model[T]) update(ctx context.Context, id models.ID, current *T, changes map[string]any) (*T, error) {
	if len(changes) == 0 {
		return nil, errors.NewValidationError("changes", "no changes provided")
	}
	if err := m.schema.ValidatePatch(changes); err != nil {
		return nil, err
	}
	set, err := m.coerce(changes)
	if err != nil {
		return nil, err
	}

	update := datastore.Update{Set: set}
	if next, ok := set["status"]; ok {
		// A cleared status falls back to its default.
		to := models.StatusActive
		if status, ok := next.(models.Status); ok {
			to = status
		}
		condition, err := m.transition(ctx, id, current, to)
		if err != nil {
			return nil, err
		}
		update.Condition = condition
	}
	return m.Apply(ctx, id, update)
}

// SoftDelete marks the record DELETED. Nothing referencing it is touched.
func (m *Model[T]) SoftDelete(ctx context.Context, id models.ID) (*T, error) {
	return m.Update(ctx, id, map[string]any{"status": models.StatusDeleted})
}

// Apply sends a prepared update to the store with the schema's default rules attached.
func (m *Model[T]) Apply(ctx context.Context, id models.ID, update datastore.Update) (*T, error) {
	update.Backfills = append(update.Backfills, m.schema.Backfills()...)
	updated, err := m.store.FindOneAndUpdate(ctx, id, update)
	if err != nil {
		if !errors.IsNotFound(err) && !errors.IsConditionFailed(err) {
			m.logger.Error("update failed", zap.String("id", id.Hex()), zap.Error(err))
		}
		return nil, err
	}
	m.logger.Debug("updated", zap.String("id", id.Hex()))
	return updated, nil
}

// transition checks a status change against the current record and returns a condition pinning
// that status, so a concurrent change makes the write fail instead of skipping a state.
func (m *Model[T]) transition(ctx context.Context, id models.ID, current *T, to models.Status) (datastore.Filter, error) {
	if current == nil {
		var err error
		if current, err = m.store.FindOne(ctx, id); err != nil {
			return nil, err
		}
	}
	if current == nil {
		return nil, errors.NewNotFoundError(
			fmt.Sprintf("%s %s not found", m.name, id.Hex()), errors.CodeNotFound, schema.FieldID)
	}
	doc, err := datastore.ToDocument(current)
	if err != nil {
		return nil, err
	}
	from, _ := doc["status"].(string)
	if from != "" && !models.Status(from).CanTransitionTo(to) {
		return nil, errors.NewValidationError("status", fmt.Sprintf("cannot change status from %s to %s", from, to))
	}
	if from == "" {
		return nil, nil
	}
	return datastore.Filter{"status": from}, nil
}

// coerce converts patch values to their stored Go types: hex strings to models.ID for object id
// fields and strings to models.Status for the status enum.
func (m *Model[T]) coerce(changes map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(changes))
	for name, v := range changes {
		f, _ := m.schema.Field(name)
		if schema.IsAbsent(v) {
			out[name] = nil
			continue
		}
		switch {
		case f.Kind == schema.KindObjectID:
			if s, ok := v.(string); ok {
				id, err := models.ParseID(s)
				if err != nil {
					return nil, errors.NewValidationError(name, err.Error())
				}
				v = id
			}
		case f.Kind == schema.KindEnum && name == "status":
			if s, ok := v.(string); ok {
				v = models.Status(s)
			}
		}
		out[name] = v
	}
	return out, nil
}

func idOf(v any) any {
	doc, err := datastore.ToDocument(v)
	if err != nil {
		return nil
	}
	return doc[schema.FieldID]
}
