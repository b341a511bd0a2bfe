/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package accessor_test

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/eventgraph/accessor"
	"github.com/suparena/eventgraph/datastore/memory"
	"github.com/suparena/eventgraph/errors"
	"github.com/suparena/eventgraph/i18n"
	"github.com/suparena/eventgraph/models"
)

// countingFinder records lookups made through it.
type countingFinder[T any] struct {
	inner accessor.Finder[T]
	calls int
}

func (c *countingFinder[T]) FindOne(ctx context.Context, id models.ID) (*T, error) {
	c.calls++
	return c.inner.FindOne(ctx, id)
}

func translated() accessor.NotFound {
	return accessor.NotFound{
		Descriptor: errors.UserNotFound,
		Translator: i18n.TranslatorFunc(func(_ context.Context, key string) string {
			return "Translated " + key
		}),
	}
}

func TestResolveReferenceMissingUser(t *testing.T) {
	ctx := context.Background()
	users := memory.New[models.User](models.EntityUser)
	org := models.Organization{ID: models.NewID(), Name: "Club", CreatedBy: models.NewID()}

	_, err := accessor.ResolveReference[models.User](ctx, users, org, "createdBy", translated())
	require.Error(t, err)

	var nf *errors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Translated user.notFound", nf.Message)
	assert.Equal(t, errors.CodeUserNotFound, nf.Code)
	assert.Equal(t, "createdBy", nf.Param)
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, errors.CodeUserNotFound, errors.CodeOf(err))
}

func TestResolveReferenceReturnsStoredRecord(t *testing.T) {
	ctx := context.Background()
	users := memory.New[models.User](models.EntityUser)
	stored, err := users.Insert(ctx, models.User{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)

	org := models.Organization{ID: models.NewID(), Name: "Club", CreatedBy: stored.ID}
	finder := &countingFinder[models.User]{inner: users}

	got, err := accessor.ResolveReference[models.User](ctx, finder, org, "createdBy", translated())
	require.NoError(t, err)
	assert.Equal(t, stored, got)

	again, err := accessor.ResolveReference[models.User](ctx, finder, org, "createdBy", translated())
	require.NoError(t, err)
	assert.Equal(t, got, again)
	assert.Equal(t, 2, finder.calls, "one lookup per call, no retries")
}

func TestResolveZeroReferenceSkipsStore(t *testing.T) {
	users := memory.New[models.User](models.EntityUser)
	finder := &countingFinder[models.User]{inner: users}
	org := models.Organization{ID: models.NewID(), CreatedBy: models.NewID()}

	_, err := accessor.ResolveReference[models.User](context.Background(), finder, org, "updatedBy", translated())
	var nf *errors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "updatedBy", nf.Param)
	assert.Zero(t, finder.calls)
}

func TestResolvePropagatesStoreErrors(t *testing.T) {
	boom := stderrors.New("connection reset")
	users := memory.New[models.User](models.EntityUser).WithFindError(boom)

	_, err := accessor.Resolve[models.User](context.Background(), users, models.NewID(), "createdBy", translated())
	assert.ErrorIs(t, err, boom)
	assert.False(t, errors.IsNotFound(err))
}

func TestResolveUnknownField(t *testing.T) {
	users := memory.New[models.User](models.EntityUser)
	_, err := accessor.ResolveReference[models.User](context.Background(), users, models.EventProject{}, "title", translated())
	assert.Error(t, err)
	assert.False(t, errors.IsNotFound(err))
}

func TestResolveNilTranslatorUsesKey(t *testing.T) {
	users := memory.New[models.User](models.EntityUser)
	_, err := accessor.Resolve[models.User](context.Background(), users, models.NewID(), "", accessor.NotFound{Descriptor: errors.PostNotFound})
	var nf *errors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "post.notFound", nf.Message)
	assert.Equal(t, "post", nf.Param)
}
