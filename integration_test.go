//go:build integration

/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package eventgraph_test

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suparena/eventgraph"
	"github.com/suparena/eventgraph/datastore/ddb"
	"github.com/suparena/eventgraph/datastore/mongostore"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/registry"
)

func backendStores(t *testing.T, ctx context.Context) map[string]eventgraph.Stores {
	t.Helper()
	_ = godotenv.Load()
	out := map[string]eventgraph.Stores{}

	if table := os.Getenv("AWS_DDB_TABLE"); table != "" {
		client, err := ddb.NewDynamoDBClient(ctx, ddb.ClientConfig{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY"),
			SecretAccessKey: os.Getenv("AWS_SECRET_KEY"),
			Region:          os.Getenv("AWS_REGION"),
			Endpoint:        os.Getenv("AWS_DDB_ENDPOINT"),
		}, zap.NewNop())
		require.NoError(t, err)
		stores, err := eventgraph.DynamoDBStores(client, table, zap.NewNop())
		require.NoError(t, err)
		out["dynamodb"] = stores
	}

	if uri := os.Getenv("MONGO_URI"); uri != "" {
		client, err := mongostore.Connect(ctx, uri, zap.NewNop())
		require.NoError(t, err)
		db := client.Database("eventgraph_it_" + models.NewID().Hex())
		t.Cleanup(func() {
			_ = db.Drop(context.Background())
			_ = client.Disconnect(context.Background())
		})
		out["mongo"] = eventgraph.MongoStores(db, zap.NewNop())
	}

	if len(out) == 0 {
		t.Skip("no backend configured (AWS_DDB_TABLE or MONGO_URI)")
	}
	return out
}

func TestBackendsApplyDefaultPolicy(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	for name, stores := range backendStores(t, ctx) {
		t.Run(name, func(t *testing.T) {
			m, err := eventgraph.BindModels(registry.New(), stores, zap.NewNop())
			require.NoError(t, err)

			u1 := models.NewID()
			created, err := m.EventProjects.Create(ctx, models.EventProject{
				Title: "Integration", Description: "d", Event: models.NewID(), CreatedBy: u1,
			})
			require.NoError(t, err)
			assert.Equal(t, models.StatusActive, created.Status)
			assert.Equal(t, u1, created.UpdatedBy)

			cleared, err := m.EventProjects.Update(ctx, created.ID, map[string]any{"updatedBy": nil})
			require.NoError(t, err)
			assert.Equal(t, u1, cleared.UpdatedBy)

			deleted, err := m.EventProjects.SoftDelete(ctx, created.ID)
			require.NoError(t, err)
			assert.Equal(t, models.StatusDeleted, deleted.Status)
		})
	}
}
