/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package resolvers

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/suparena/eventgraph"
	"github.com/suparena/eventgraph/errors"
	"github.com/suparena/eventgraph/i18n"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/registry"
	"github.com/suparena/eventgraph/txlog"
)

type fixture struct {
	r     *Resolver
	m     *eventgraph.Models
	user  *models.User
	org   *models.Organization
	event *models.Event
	post  *models.Post
}

func newFixture(t *testing.T, translator errors.Translator) *fixture {
	t.Helper()
	ctx := context.Background()
	m, err := eventgraph.BindModels(registry.New(), eventgraph.MemoryStores(), zap.NewNop())
	require.NoError(t, err)

	f := &fixture{m: m}
	f.r = New(m, translator, txlog.NewLog(txlog.NewMemory(txlog.DefaultCapacity), zap.NewNop()), zap.NewNop())

	f.user, err = m.Users.Create(ctx, models.User{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"})
	require.NoError(t, err)
	f.org, err = m.Organizations.Create(ctx, models.Organization{Name: "Harbor Arts", CreatedBy: f.user.ID})
	require.NoError(t, err)
	f.event, err = m.Events.Create(ctx, models.Event{
		Title: "Open Studio", Description: "Annual", Organization: f.org.ID, CreatedBy: f.user.ID,
	})
	require.NoError(t, err)
	f.post, err = m.Posts.Create(ctx, models.Post{Text: "Doors at six", Organization: f.org.ID, CreatedBy: f.user.ID})
	require.NoError(t, err)
	return f
}

func (f *fixture) project(t *testing.T) *models.EventProject {
	t.Helper()
	p, err := f.r.CreateEventProject(context.Background(), CreateEventProjectInput{
		EventID: f.event.ID, Title: "Signage", Description: "Wayfinding",
	}, f.user.ID)
	require.NoError(t, err)
	return p
}

func requireNotFound(t *testing.T, err error, code errors.ErrorCode, param string) *errors.NotFoundError {
	t.Helper()
	var nf *errors.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, code, nf.Code)
	assert.Equal(t, param, nf.Param)
	return nf
}

func TestFieldResolvers(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, i18n.Identity)
	p := f.project(t)

	creator, err := f.r.EventProjectCreatedBy(ctx, *p)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, creator.ID)

	updater, err := f.r.EventProjectUpdatedBy(ctx, *p)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, updater.ID)

	event, err := f.r.EventProjectEvent(ctx, *p)
	require.NoError(t, err)
	assert.Equal(t, f.event, event)

	orgCreator, err := f.r.OrganizationCreatedBy(ctx, *f.org)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, orgCreator.ID)

	orgUpdater, err := f.r.OrganizationUpdatedBy(ctx, *f.org)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, orgUpdater.ID)

	org, err := f.r.PostOrganization(ctx, *f.post)
	require.NoError(t, err)
	assert.Equal(t, f.org.ID, org.ID)
}

func TestFieldResolverMissingReference(t *testing.T) {
	ctx := context.Background()
	catalog, err := i18n.New("en")
	require.NoError(t, err)
	f := newFixture(t, catalog)

	dangling := models.EventProject{ID: models.NewID(), CreatedBy: models.NewID(), UpdatedBy: models.NewID(), Event: models.NewID()}

	_, err = f.r.EventProjectCreatedBy(ctx, dangling)
	nf := requireNotFound(t, err, errors.CodeUserNotFound, "createdBy")
	assert.Equal(t, "User not found", nf.Message)

	_, err = f.r.EventProjectUpdatedBy(ctx, dangling)
	requireNotFound(t, err, errors.CodeUserNotFound, "updatedBy")

	_, err = f.r.EventProjectEvent(ctx, dangling)
	requireNotFound(t, err, errors.CodeEventNotFound, "event")

	_, err = f.r.OrganizationUpdatedBy(ctx, models.Organization{CreatedBy: models.NewID()})
	requireNotFound(t, err, errors.CodeUserNotFound, "updatedBy")
}

func TestCreateEventProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, i18n.Identity)

	p := f.project(t)
	assert.Equal(t, f.user.ID, p.CreatedBy)
	assert.Equal(t, f.user.ID, p.UpdatedBy)
	assert.Equal(t, models.StatusActive, p.Status)

	logs, err := f.r.TransactionLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, txlog.TypeCreate, logs[0].Type)
	assert.Equal(t, models.EntityEventProject, logs[0].Model)

	listed, err := f.r.EventProjectsByEvent(ctx, f.event.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, p.ID, listed[0].ID)

	_, err = f.r.CreateEventProject(ctx, CreateEventProjectInput{EventID: models.NewID(), Title: "x", Description: "y"}, f.user.ID)
	requireNotFound(t, err, errors.CodeEventNotFound, "eventId")

	_, err = f.r.CreateEventProject(ctx, CreateEventProjectInput{EventID: f.event.ID, Title: "x", Description: "y"}, models.NewID())
	requireNotFound(t, err, errors.CodeUserNotFound, "userId")
}

func TestUpdateEventProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, i18n.Identity)
	p := f.project(t)

	editor, err := f.m.Users.Create(ctx, models.User{FirstName: "Alan", LastName: "Kay", Email: "alan@example.com"})
	require.NoError(t, err)

	updated, err := f.r.UpdateEventProject(ctx, p.ID, map[string]any{"title": "Signs"}, editor.ID)
	require.NoError(t, err)
	assert.Equal(t, "Signs", updated.Title)
	assert.Equal(t, editor.ID, updated.UpdatedBy)
	assert.Equal(t, f.user.ID, updated.CreatedBy)

	_, err = f.r.UpdateEventProject(ctx, models.NewID(), map[string]any{"title": "x"}, editor.ID)
	requireNotFound(t, err, errors.CodeEventProjectNotFound, "id")

	_, err = f.r.UpdateEventProject(ctx, p.ID, map[string]any{"createdAt": "now"}, editor.ID)
	assert.True(t, errors.IsValidationError(err))
}

func TestUpdateEventProjectGuardsReferences(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, i18n.Identity)
	p := f.project(t)

	stranger, err := f.m.Users.Create(ctx, models.User{FirstName: "Ada", LastName: "Byron", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = f.r.UpdateEventProject(ctx, p.ID, map[string]any{"createdBy": stranger.ID}, stranger.ID)
	var ve *errors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "createdBy", ve.Field)

	_, err = f.r.UpdateEventProject(ctx, p.ID, map[string]any{"event": models.NewID().Hex()}, f.user.ID)
	requireNotFound(t, err, errors.CodeEventNotFound, "event")

	_, err = f.r.UpdateEventProject(ctx, p.ID, map[string]any{"event": nil}, f.user.ID)
	assert.True(t, errors.IsValidationError(err))

	stored, err := f.m.EventProjects.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, f.user.ID, stored.CreatedBy)
	assert.Equal(t, f.event.ID, stored.Event)

	other, err := f.m.Events.Create(ctx, models.Event{
		Title: "Night Market", Description: "Monthly", Organization: f.org.ID, CreatedBy: f.user.ID,
	})
	require.NoError(t, err)
	moved, err := f.r.UpdateEventProject(ctx, p.ID, map[string]any{"event": other.ID}, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, other.ID, moved.Event)
}

func TestEventProjectsByEventHidesRemoved(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, i18n.Identity)
	kept := f.project(t)
	gone := f.project(t)

	_, err := f.r.RemoveEventProject(ctx, gone.ID, f.user.ID)
	require.NoError(t, err)

	listed, err := f.r.EventProjectsByEvent(ctx, f.event.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, kept.ID, listed[0].ID)

	_, err = f.r.EventProjectsByEvent(ctx, models.NewID())
	requireNotFound(t, err, errors.CodeEventNotFound, "eventId")
}

func TestRemoveEventProject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, i18n.Identity)
	p := f.project(t)

	removed, err := f.r.RemoveEventProject(ctx, p.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusDeleted, removed.Status)

	event, err := f.m.Events.FindByID(ctx, f.event.ID)
	require.NoError(t, err)
	assert.Equal(t, f.event, event, "referenced records are untouched")

	_, err = f.r.UpdateEventProject(ctx, p.ID, map[string]any{"status": "ACTIVE"}, f.user.ID)
	assert.True(t, errors.IsValidationError(err))

	logs, err := f.r.TransactionLogs(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, txlog.TypeDelete, logs[0].Type)
}

func TestLikePostNotFound(t *testing.T) {
	f := newFixture(t, i18n.Identity)

	_, err := f.r.LikePost(context.Background(), models.NewID(), f.user.ID)
	nf := requireNotFound(t, err, errors.CodePostNotFound, "id")
	assert.Equal(t, errors.PostNotFound.Key, nf.Message)
}

func TestLikePost(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, i18n.Identity)

	liked, err := f.r.LikePost(ctx, f.post.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.ID{f.user.ID}, liked.LikedBy)
	assert.Equal(t, 1, liked.LikeCount)

	logs, err := f.r.TransactionLogs(ctx, 1)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, f.user.ID, logs[0].CreatedBy)
	assert.Equal(t, txlog.TypeUpdate, logs[0].Type)
	assert.Equal(t, models.EntityPost, logs[0].Model)

	again, err := f.r.LikePost(ctx, f.post.ID, f.user.ID)
	require.NoError(t, err)
	assert.Equal(t, liked, again)
	assert.Equal(t, 1, again.LikeCount)

	logs, err = f.r.TransactionLogs(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, logs, 1, "a repeated like records nothing")
}

func TestLikePostConcurrent(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, i18n.Identity)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.r.LikePost(ctx, f.post.ID, f.user.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	post, err := f.m.Posts.FindByID(ctx, f.post.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, post.LikeCount)
	assert.Len(t, post.LikedBy, 1)
}
