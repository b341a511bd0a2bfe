/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eventgraph

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/suparena/eventgraph/datastore"
	"github.com/suparena/eventgraph/datastore/ddb"
	"github.com/suparena/eventgraph/datastore/memory"
	"github.com/suparena/eventgraph/datastore/mongostore"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/registry"
)

// Stores holds one backing store per entity.
type Stores struct {
	Users         datastore.DataStore[models.User]
	Organizations datastore.DataStore[models.Organization]
	Events        datastore.DataStore[models.Event]
	EventProjects datastore.DataStore[models.EventProject]
	Posts         datastore.DataStore[models.Post]
}

// MemoryStores returns empty in-process stores.
func MemoryStores() Stores {
	return Stores{
		Users:         memory.New[models.User](models.EntityUser),
		Organizations: memory.New[models.Organization](models.EntityOrganization),
		Events:        memory.New[models.Event](models.EntityEvent),
		EventProjects: memory.New[models.EventProject](models.EntityEventProject),
		Posts:         memory.New[models.Post](models.EntityPost),
	}
}

// MongoStores returns one collection per entity in db.
func MongoStores(db *mongo.Database, logger *zap.Logger) Stores {
	return Stores{
		Users:         mongostore.New[models.User](db, "users", models.EntityUser, logger),
		Organizations: mongostore.New[models.Organization](db, "organizations", models.EntityOrganization, logger),
		Events:        mongostore.New[models.Event](db, "events", models.EntityEvent, logger),
		EventProjects: mongostore.New[models.EventProject](db, "eventprojects", models.EntityEventProject, logger),
		Posts:         mongostore.New[models.Post](db, "posts", models.EntityPost, logger),
	}
}

// DynamoDBStores returns stores sharing one table.
func DynamoDBStores(client ddb.Client, table string, logger *zap.Logger) (Stores, error) {
	var (
		s   Stores
		err error
	)
	opt := ddb.WithLogger(logger)
	if s.Users, err = ddb.NewDynamodbDataStore[models.User](client, table, opt); err != nil {
		return Stores{}, err
	}
	if s.Organizations, err = ddb.NewDynamodbDataStore[models.Organization](client, table, opt); err != nil {
		return Stores{}, err
	}
	if s.Events, err = ddb.NewDynamodbDataStore[models.Event](client, table, opt); err != nil {
		return Stores{}, err
	}
	if s.EventProjects, err = ddb.NewDynamodbDataStore[models.EventProject](client, table, opt); err != nil {
		return Stores{}, err
	}
	if s.Posts, err = ddb.NewDynamodbDataStore[models.Post](client, table, opt); err != nil {
		return Stores{}, err
	}
	return s, nil
}

// Models is the set of bound application models.
type Models struct {
	Users         *Model[models.User]
	Organizations *Model[models.Organization]
	Events        *Model[models.Event]
	EventProjects *Model[models.EventProject]
	Posts         *Model[models.Post]
}

// BindModels binds every application schema to its store in reg.
func BindModels(reg *registry.Registry, stores Stores, logger *zap.Logger) (*Models, error) {
	var (
		m   Models
		err error
	)
	if m.Users, err = Bind(reg, models.MustSchema(models.EntityUser), stores.Users, logger); err != nil {
		return nil, fmt.Errorf("bind models: %w", err)
	}
	if m.Organizations, err = Bind(reg, models.MustSchema(models.EntityOrganization), stores.Organizations, logger); err != nil {
		return nil, fmt.Errorf("bind models: %w", err)
	}
	if m.Events, err = Bind(reg, models.MustSchema(models.EntityEvent), stores.Events, logger); err != nil {
		return nil, fmt.Errorf("bind models: %w", err)
	}
	if m.EventProjects, err = Bind(reg, models.MustSchema(models.EntityEventProject), stores.EventProjects, logger); err != nil {
		return nil, fmt.Errorf("bind models: %w", err)
	}
	if m.Posts, err = Bind(reg, models.MustSchema(models.EntityPost), stores.Posts, logger); err != nil {
		return nil, fmt.Errorf("bind models: %w", err)
	}
	return &m, nil
}
