/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package mongostore implements datastore.DataStore on MongoDB collections.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/suparena/eventgraph/datastore"
	storeerrors "github.com/suparena/eventgraph/errors"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/schema"
)

// Store keeps documents of type T in one collection.
type Store[T any] struct {
	coll   *mongo.Collection
	entity string
	now    func() time.Time
	logger *zap.Logger
}

var _ datastore.DataStore[models.User] = (*Store[models.User])(nil)

// Connect opens a client and verifies it with a ping.
func Connect(ctx context.Context, uri string, logger *zap.Logger) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	logger.Info("MongoDB client connected")
	return client, nil
}

// New returns a store over db.Collection(collection). entity names the stored type in errors.
func New[T any](db *mongo.Database, collection, entity string, logger *zap.Logger) *Store[T] {
	return &Store[T]{
		coll:   db.Collection(collection),
		entity: entity,
		now:    time.Now,
		logger: logger.With(zap.String("collection", collection)),
	}
}

// FindOne returns the document with the given id, or nil when there is none.
func (s *Store[T]) FindOne(ctx context.Context, id models.ID) (*T, error) {
	out := new(T)
	err := s.coll.FindOne(ctx, bson.M{schema.FieldID: id.ObjectID()}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.entity, err)
	}
	return out, nil
}

// Find returns documents matching filter in insertion order. Equality on an array field
// matches when the array contains the value, which is MongoDB's native behavior.
func (s *Store[T]) Find(ctx context.Context, filter datastore.Filter) ([]T, error) {
	query := bson.M{}
	for k, v := range filter {
		query[k] = v
	}
	cur, err := s.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: schema.FieldID, Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", s.entity, err)
	}
	results := make([]T, 0)
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.entity, err)
	}
	return results, nil
}

// Insert stores a new document, assigning an id when the entity has none.
func (s *Store[T]) Insert(ctx context.Context, entity T) (*T, error) {
	doc, err := datastore.ToDocument(entity)
	if err != nil {
		return nil, err
	}
	if id, ok := doc[schema.FieldID].(primitive.ObjectID); !ok || id.IsZero() {
		doc[schema.FieldID] = primitive.NewObjectID()
	}
	now := primitive.NewDateTimeFromTime(s.now().UTC())
	doc[schema.FieldCreatedAt] = now
	doc[schema.FieldUpdatedAt] = now

	if _, err := s.coll.InsertOne(ctx, bson.M(doc)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, storeerrors.NewAlreadyExistsError(s.entity, fmt.Sprint(doc[schema.FieldID]))
		}
		return nil, fmt.Errorf("insert %s: %w", s.entity, err)
	}
	return datastore.FromDocument[T](doc)
}

// FindOneAndUpdate runs update as an aggregation-pipeline update, so default rules read the
// document state produced by the same write.
func (s *Store[T]) FindOneAndUpdate(ctx context.Context, id models.ID, update datastore.Update) (*T, error) {
	if update.IsEmpty() {
		return nil, storeerrors.NewValidationError("update", "no updates provided")
	}
	filter := matchFilter(id, update)
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	out := new(T)
	err := s.coll.FindOneAndUpdate(ctx, filter, buildPipeline(update), opts).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		n, countErr := s.coll.CountDocuments(ctx, bson.M{schema.FieldID: id.ObjectID()})
		if countErr != nil {
			return nil, fmt.Errorf("update %s: %w", s.entity, countErr)
		}
		if n == 0 {
			return nil, storeerrors.NewNotFoundError(
				fmt.Sprintf("%s %s not found", s.entity, id.Hex()), storeerrors.CodeNotFound, schema.FieldID)
		}
		return nil, storeerrors.NewConditionFailedError("update "+s.entity, fmt.Sprint(filter))
	}
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", s.entity, err)
	}
	s.logger.Debug("document updated", zap.String("id", id.Hex()))
	return out, nil
}

func matchFilter(id models.ID, update datastore.Update) bson.M {
	filter := bson.M{schema.FieldID: id.ObjectID()}
	for k, v := range update.Condition {
		filter[k] = v
	}
	for k, v := range update.Exclude {
		filter[k] = bson.M{"$ne": v}
	}
	return filter
}

// buildPipeline returns a two-stage pipeline: the changes, then the default rules evaluated
// against the changed document.
func buildPipeline(update datastore.Update) mongo.Pipeline {
	changes := bson.D{}
	var unset []string
	for _, k := range sortedKeys(update.Set) {
		v := update.Set[k]
		if v == nil {
			unset = append(unset, k)
			continue
		}
		// $literal keeps strings such as "$x" from being read as field paths.
		changes = append(changes, bson.E{Key: k, Value: bson.M{"$literal": v}})
	}
	for _, k := range sortedKeys(update.Inc) {
		changes = append(changes, bson.E{Key: k, Value: bson.M{
			"$add": bson.A{bson.M{"$ifNull": bson.A{"$" + k, 0}}, update.Inc[k]},
		}})
	}
	for _, k := range sortedKeys(update.AddToSet) {
		current := bson.M{"$ifNull": bson.A{"$" + k, bson.A{}}}
		v := bson.M{"$literal": update.AddToSet[k]}
		changes = append(changes, bson.E{Key: k, Value: bson.M{
			"$cond": bson.A{
				bson.M{"$in": bson.A{v, current}},
				current,
				bson.M{"$concatArrays": bson.A{current, bson.A{v}}},
			},
		}})
	}
	changes = append(changes, bson.E{Key: schema.FieldUpdatedAt, Value: "$$NOW"})

	pipeline := mongo.Pipeline{}
	if len(unset) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$unset", Value: unset}})
	}
	pipeline = append(pipeline, bson.D{{Key: "$set", Value: changes}})

	if len(update.Backfills) > 0 {
		defaults := bson.D{}
		for _, b := range update.Backfills {
			var fallback any = bson.M{"$literal": b.Value}
			if b.From != "" {
				fallback = "$" + b.From
			}
			defaults = append(defaults, bson.E{Key: b.Field, Value: bson.M{
				"$ifNull": bson.A{"$" + b.Field, fallback},
			}})
		}
		pipeline = append(pipeline, bson.D{{Key: "$set", Value: defaults}})
	}
	return pipeline
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
