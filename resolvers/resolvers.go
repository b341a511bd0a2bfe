/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package resolvers implements the field resolvers and mutations of the API on top of the
// bound models. Field resolvers take the parent record; mutations take the viewer's id.
package resolvers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/suparena/eventgraph"
	"github.com/suparena/eventgraph/accessor"
	"github.com/suparena/eventgraph/datastore"
	"github.com/suparena/eventgraph/errors"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/txlog"
)

// Resolver holds the collaborators shared by every resolver.
type Resolver struct {
	models     *eventgraph.Models
	translator errors.Translator
	log        *txlog.Log
	logger     *zap.Logger
}

// New returns a Resolver. translator localizes error messages; log receives mutation entries.
func New(m *eventgraph.Models, translator errors.Translator, log *txlog.Log, logger *zap.Logger) *Resolver {
	return &Resolver{models: m, translator: translator, log: log, logger: logger}
}

func (r *Resolver) notFound(d errors.Descriptor) accessor.NotFound {
	return accessor.NotFound{Descriptor: d, Translator: r.translator}
}

// OrganizationCreatedBy resolves the creator of an organization.
func (r *Resolver) OrganizationCreatedBy(ctx context.Context, parent models.Organization) (*models.User, error) {
	return accessor.ResolveReference[models.User](ctx, r.models.Users, parent, "createdBy", r.notFound(errors.UserNotFound))
}

// OrganizationUpdatedBy resolves the latest updater of an organization.
func (r *Resolver) OrganizationUpdatedBy(ctx context.Context, parent models.Organization) (*models.User, error) {
	return accessor.ResolveReference[models.User](ctx, r.models.Users, parent, "updatedBy", r.notFound(errors.UserNotFound))
}

// EventProjectCreatedBy resolves the creator of an event project.
func (r *Resolver) EventProjectCreatedBy(ctx context.Context, parent models.EventProject) (*models.User, error) {
	return accessor.ResolveReference[models.User](ctx, r.models.Users, parent, "createdBy", r.notFound(errors.UserNotFound))
}

// EventProjectUpdatedBy resolves the latest updater of an event project.
func (r *Resolver) EventProjectUpdatedBy(ctx context.Context, parent models.EventProject) (*models.User, error) {
	return accessor.ResolveReference[models.User](ctx, r.models.Users, parent, "updatedBy", r.notFound(errors.UserNotFound))
}

// EventProjectEvent resolves the event an event project belongs to.
func (r *Resolver) EventProjectEvent(ctx context.Context, parent models.EventProject) (*models.Event, error) {
	return accessor.ResolveReference[models.Event](ctx, r.models.Events, parent, "event", r.notFound(errors.EventNotFound))
}

// PostOrganization resolves the organization a post was published in.
func (r *Resolver) PostOrganization(ctx context.Context, parent models.Post) (*models.Organization, error) {
	return accessor.ResolveReference[models.Organization](ctx, r.models.Organizations, parent, "organization", r.notFound(errors.OrganizationNotFound))
}

// EventProject looks up one event project.
func (r *Resolver) EventProject(ctx context.Context, id models.ID) (*models.EventProject, error) {
	return accessor.Resolve[models.EventProject](ctx, r.models.EventProjects, id, "id", r.notFound(errors.EventProjectNotFound))
}

// Organization looks up one organization.
func (r *Resolver) Organization(ctx context.Context, id models.ID) (*models.Organization, error) {
	return accessor.Resolve[models.Organization](ctx, r.models.Organizations, id, "id", r.notFound(errors.OrganizationNotFound))
}

// Post looks up one post.
func (r *Resolver) Post(ctx context.Context, id models.ID) (*models.Post, error) {
	return accessor.Resolve[models.Post](ctx, r.models.Posts, id, "id", r.notFound(errors.PostNotFound))
}

// EventProjectsByEvent lists the visible projects of an event. Blocked and deleted projects are
// left out.
func (r *Resolver) EventProjectsByEvent(ctx context.Context, eventID models.ID) ([]models.EventProject, error) {
	if _, err := accessor.Resolve[models.Event](ctx, r.models.Events, eventID, "eventId", r.notFound(errors.EventNotFound)); err != nil {
		return nil, err
	}
	projects, err := r.models.EventProjects.Find(ctx, datastore.Filter{"event": eventID})
	if err != nil {
		return nil, err
	}
	visible := projects[:0]
	for _, p := range projects {
		if p.Status.IsVisible() {
			visible = append(visible, p)
		}
	}
	return visible, nil
}

// CreateEventProjectInput is the argument of CreateEventProject.
type CreateEventProjectInput struct {
	EventID     models.ID `json:"eventId" binding:"required"`
	Title       string    `json:"title" binding:"required"`
	Description string    `json:"description" binding:"required"`
}

// CreateEventProject creates a project under an existing event on behalf of viewer.
func (r *Resolver) CreateEventProject(ctx context.Context, in CreateEventProjectInput, viewer models.ID) (*models.EventProject, error) {
	if err := r.requireViewer(ctx, viewer); err != nil {
		return nil, err
	}
	if _, err := accessor.Resolve[models.Event](ctx, r.models.Events, in.EventID, "eventId", r.notFound(errors.EventNotFound)); err != nil {
		return nil, err
	}

	created, err := r.models.EventProjects.Create(ctx, models.EventProject{
		Title:       in.Title,
		Description: in.Description,
		Event:       in.EventID,
		CreatedBy:   viewer,
	})
	if err != nil {
		return nil, err
	}
	r.log.Record(ctx, viewer, txlog.TypeCreate, models.EntityEventProject)
	return created, nil
}

// UpdateEventProject applies changes to a project and records viewer as its updater unless
// changes names one. The creator is fixed; a new event must exist.
func (r *Resolver) UpdateEventProject(ctx context.Context, id models.ID, changes map[string]any, viewer models.ID) (*models.EventProject, error) {
	if err := r.requireViewer(ctx, viewer); err != nil {
		return nil, err
	}
	if _, ok := changes["createdBy"]; ok {
		return nil, errors.NewValidationError("createdBy", "cannot be changed")
	}
	current, err := r.EventProject(ctx, id)
	if err != nil {
		return nil, err
	}
	if next, ok := changes["event"]; ok {
		if err := r.requireEvent(ctx, next); err != nil {
			return nil, err
		}
	}

	patch := make(map[string]any, len(changes)+1)
	for k, v := range changes {
		patch[k] = v
	}
	if _, ok := patch["updatedBy"]; !ok {
		patch["updatedBy"] = viewer
	}
	updated, err := r.models.EventProjects.UpdateLoaded(ctx, id, current, patch)
	if err != nil {
		return nil, err
	}
	r.log.Record(ctx, viewer, txlog.TypeUpdate, models.EntityEventProject)
	return updated, nil
}

// requireEvent resolves the event named by an update value, given as an id or its hex form.
func (r *Resolver) requireEvent(ctx context.Context, v any) error {
	var id models.ID
	switch tv := v.(type) {
	case models.ID:
		id = tv
	case string:
		parsed, err := models.ParseID(tv)
		if err != nil {
			return errors.NewValidationError("event", err.Error())
		}
		id = parsed
	case nil:
		return errors.NewValidationError("event", "required field cannot be cleared")
	default:
		return errors.NewValidationError("event", fmt.Sprintf("%v is not an object id", v))
	}
	_, err := accessor.Resolve[models.Event](ctx, r.models.Events, id, "event", r.notFound(errors.EventNotFound))
	return err
}

// RemoveEventProject soft-deletes a project. Records referencing it are left as they are.
func (r *Resolver) RemoveEventProject(ctx context.Context, id models.ID, viewer models.ID) (*models.EventProject, error) {
	if err := r.requireViewer(ctx, viewer); err != nil {
		return nil, err
	}
	current, err := r.EventProject(ctx, id)
	if err != nil {
		return nil, err
	}

	removed, err := r.models.EventProjects.UpdateLoaded(ctx, id, current, map[string]any{
		"status":    models.StatusDeleted,
		"updatedBy": viewer,
	})
	if err != nil {
		return nil, err
	}
	r.log.Record(ctx, viewer, txlog.TypeDelete, models.EntityEventProject)
	return removed, nil
}

// LikePost adds viewer to the post's likers. Liking twice is a no-op that returns the post as
// stored; concurrent likes by the same viewer count once.
func (r *Resolver) LikePost(ctx context.Context, id models.ID, viewer models.ID) (*models.Post, error) {
	if err := r.requireViewer(ctx, viewer); err != nil {
		return nil, err
	}
	post, err := r.Post(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.LikedByUser(viewer) {
		return post, nil
	}

	liked, err := r.models.Posts.Apply(ctx, id, datastore.Update{
		AddToSet: map[string]any{"likedBy": viewer},
		Inc:      map[string]int{"likeCount": 1},
		Exclude:  datastore.Filter{"likedBy": viewer},
	})
	switch {
	case errors.IsConditionFailed(err):
		r.logger.Debug("post already liked", zap.String("post", id.Hex()), zap.String("viewer", viewer.Hex()))
		return r.Post(ctx, id)
	case errors.IsNotFound(err):
		return nil, errors.PostNotFound.NotFound(ctx, r.translator, "id")
	case err != nil:
		return nil, err
	}

	r.log.Record(ctx, viewer, txlog.TypeUpdate, models.EntityPost)
	return liked, nil
}

// TransactionLogs returns up to limit recent log entries, newest first.
func (r *Resolver) TransactionLogs(ctx context.Context, limit int) ([]txlog.Entry, error) {
	return r.log.Recent(ctx, limit)
}

func (r *Resolver) requireViewer(ctx context.Context, viewer models.ID) error {
	_, err := accessor.Resolve[models.User](ctx, r.models.Users, viewer, "userId", r.notFound(errors.UserNotFound))
	return err
}
