/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package mongostore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/suparena/eventgraph/datastore"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/schema"
)

func TestBuildPipelineSetAndBackfill(t *testing.T) {
	pipeline := buildPipeline(datastore.Update{
		Set:       map[string]any{"title": "$notAField", "updatedBy": nil},
		Backfills: []schema.Backfill{{Field: "updatedBy", From: "createdBy"}, {Field: "status", Value: "ACTIVE"}},
	})
	require.Len(t, pipeline, 3)

	assert.Equal(t, bson.D{{Key: "$unset", Value: []string{"updatedBy"}}}, pipeline[0])

	changes := pipeline[1][0].Value.(bson.D)
	assert.Equal(t, bson.E{Key: "title", Value: bson.M{"$literal": "$notAField"}}, changes[0])
	assert.Equal(t, bson.E{Key: "updatedAt", Value: "$$NOW"}, changes[len(changes)-1])

	defaults := pipeline[2][0].Value.(bson.D)
	assert.Equal(t, bson.E{Key: "updatedBy", Value: bson.M{"$ifNull": bson.A{"$updatedBy", "$createdBy"}}}, defaults[0])
	assert.Equal(t, bson.E{Key: "status", Value: bson.M{"$ifNull": bson.A{"$status", bson.M{"$literal": "ACTIVE"}}}}, defaults[1])
}

func TestBuildPipelineLike(t *testing.T) {
	viewer := models.NewID()
	update := datastore.Update{
		AddToSet: map[string]any{"likedBy": viewer},
		Inc:      map[string]int{"likeCount": 1},
		Exclude:  datastore.Filter{"likedBy": viewer},
	}
	pipeline := buildPipeline(update)
	require.Len(t, pipeline, 1)

	changes := pipeline[0][0].Value.(bson.D)
	require.Len(t, changes, 3)
	assert.Equal(t, "likeCount", changes[0].Key)
	assert.Equal(t, "likedBy", changes[1].Key)

	id := models.NewID()
	filter := matchFilter(id, update)
	assert.Equal(t, id.ObjectID(), filter["_id"])
	assert.Equal(t, bson.M{"$ne": viewer}, filter["likedBy"])
}
