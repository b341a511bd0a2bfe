/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package memory_test

import (
	"context"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/eventgraph/datastore"
	"github.com/suparena/eventgraph/datastore/memory"
	"github.com/suparena/eventgraph/errors"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/schema"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestInsertAndFindOne(t *testing.T) {
	ctx := context.Background()
	store := memory.New[models.EventProject](models.EntityEventProject).WithClock(fixedClock)

	creator := models.NewID()
	created, err := store.Insert(ctx, models.EventProject{
		Title:     "Stage",
		CreatedBy: creator,
		Event:     models.NewID(),
		CreatedAt: time.Date(1999, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.False(t, created.ID.IsZero())
	assert.Equal(t, fixedClock(), created.CreatedAt, "caller timestamps are ignored")
	assert.Equal(t, fixedClock(), created.UpdatedAt)

	found, err := store.FindOne(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, found)

	missing, err := store.FindOne(ctx, models.NewID())
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = store.Insert(ctx, *created)
	assert.True(t, errors.IsAlreadyExists(err))
	assert.Equal(t, 1, store.Count())
}

func TestFindOneAndUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.New[models.EventProject](models.EntityEventProject)
	creator := models.NewID()
	created, err := store.Insert(ctx, models.EventProject{Title: "Stage", CreatedBy: creator, UpdatedBy: models.NewID()})
	require.NoError(t, err)

	t.Run("SetAndBackfill", func(t *testing.T) {
		updated, err := store.FindOneAndUpdate(ctx, created.ID, datastore.Update{
			Set:       map[string]any{"title": "Main Stage", "updatedBy": nil},
			Backfills: []schema.Backfill{{Field: "updatedBy", From: "createdBy"}},
		})
		require.NoError(t, err)
		assert.Equal(t, "Main Stage", updated.Title)
		assert.Equal(t, creator, updated.UpdatedBy)
		assert.Equal(t, created.CreatedAt, updated.CreatedAt)
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := store.FindOneAndUpdate(ctx, models.NewID(), datastore.Update{Set: map[string]any{"title": "x"}})
		assert.True(t, errors.IsNotFound(err))
	})

	t.Run("Condition", func(t *testing.T) {
		_, err := store.FindOneAndUpdate(ctx, created.ID, datastore.Update{
			Set:       map[string]any{"title": "Other"},
			Condition: datastore.Filter{"title": "Nope"},
		})
		assert.True(t, errors.IsConditionFailed(err))

		current, err := store.FindOne(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "Main Stage", current.Title)
	})
}

func TestAddToSetAndInc(t *testing.T) {
	ctx := context.Background()
	store := memory.New[models.Post](models.EntityPost)
	post, err := store.Insert(ctx, models.Post{Text: "hello", CreatedBy: models.NewID()})
	require.NoError(t, err)

	viewer := models.NewID()
	like := datastore.Update{
		AddToSet: map[string]any{"likedBy": viewer},
		Inc:      map[string]int{"likeCount": 1},
		Exclude:  datastore.Filter{"likedBy": viewer},
	}

	liked, err := store.FindOneAndUpdate(ctx, post.ID, like)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{viewer}, liked.LikedBy)
	assert.Equal(t, 1, liked.LikeCount)

	_, err = store.FindOneAndUpdate(ctx, post.ID, like)
	assert.True(t, errors.IsConditionFailed(err))

	byViewer, err := store.Find(ctx, datastore.Filter{"likedBy": viewer})
	require.NoError(t, err)
	assert.Len(t, byViewer, 1)
}

func TestConcurrentLikesCountOnce(t *testing.T) {
	ctx := context.Background()
	store := memory.New[models.Post](models.EntityPost)
	post, err := store.Insert(ctx, models.Post{Text: "hello", CreatedBy: models.NewID()})
	require.NoError(t, err)

	viewer := models.NewID()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = store.FindOneAndUpdate(ctx, post.ID, datastore.Update{
				AddToSet: map[string]any{"likedBy": viewer},
				Inc:      map[string]int{"likeCount": 1},
				Exclude:  datastore.Filter{"likedBy": viewer},
			})
		}()
	}
	wg.Wait()

	final, err := store.FindOne(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, final.LikeCount)
	assert.Len(t, final.LikedBy, 1)
}

func TestFind(t *testing.T) {
	ctx := context.Background()
	store := memory.New[models.EventProject](models.EntityEventProject)
	event := models.NewID()
	for _, title := range []string{"a", "b"} {
		_, err := store.Insert(ctx, models.EventProject{Title: title, Event: event, CreatedBy: models.NewID()})
		require.NoError(t, err)
	}
	_, err := store.Insert(ctx, models.EventProject{Title: "c", Event: models.NewID(), CreatedBy: models.NewID()})
	require.NoError(t, err)

	found, err := store.Find(ctx, datastore.Filter{"event": event})
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "a", found[0].Title)
	assert.Equal(t, "b", found[1].Title)

	all, err := store.Find(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestErrorInjectionAndCancellation(t *testing.T) {
	boom := stderrors.New("boom")
	store := memory.New[models.User](models.EntityUser).WithInsertError(boom)

	_, err := store.Insert(context.Background(), models.User{FirstName: "Ada"})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, store.Count())

	store = memory.New[models.User](models.EntityUser)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = store.Insert(ctx, models.User{FirstName: "Ada"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, store.Count())
}
