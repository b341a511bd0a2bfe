/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package server

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/suparena/eventgraph"
	"github.com/suparena/eventgraph/errors"
	"github.com/suparena/eventgraph/models"
	"github.com/suparena/eventgraph/resolvers"
)

// DefaultLogLimit is the number of transaction log entries returned when the request names none.
const DefaultLogLimit = 50

// Options configures the router.
type Options struct {
	CORSAllowedOrigins string
}

// Handler serves the resolvers over HTTP.
type Handler struct {
	resolver   *resolvers.Resolver
	translator errors.Translator
}

// NewRouter builds the gin engine. Reads are public; mutations and the transaction log require a
// bearer token.
func NewRouter(r *resolvers.Resolver, jwtService *JWTService, tr errors.Translator, logger *zap.Logger, opts Options) *gin.Engine {
	h := &Handler{resolver: r, translator: tr}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(CORS(opts.CORSAllowedOrigins))
	router.Use(Logger(logger))
	router.Use(Language())

	router.GET("/health", func(c *gin.Context) { OK(c, gin.H{"status": "ok"}) })
	router.GET("/version", func(c *gin.Context) { OK(c, eventgraph.GetVersionInfo()) })

	router.GET("/organizations/:id", h.Organization)
	router.GET("/organizations/:id/createdBy", h.OrganizationCreatedBy)
	router.GET("/organizations/:id/updatedBy", h.OrganizationUpdatedBy)
	router.GET("/events/:id/eventProjects", h.EventProjectsByEvent)
	router.GET("/eventProjects/:id", h.EventProject)
	router.GET("/eventProjects/:id/createdBy", h.EventProjectCreatedBy)
	router.GET("/eventProjects/:id/updatedBy", h.EventProjectUpdatedBy)
	router.GET("/eventProjects/:id/event", h.EventProjectEvent)
	router.GET("/posts/:id", h.Post)

	api := router.Group("")
	api.Use(JWT(jwtService, tr))
	{
		api.POST("/eventProjects", h.CreateEventProject)
		api.PATCH("/eventProjects/:id", h.UpdateEventProject)
		api.DELETE("/eventProjects/:id", h.RemoveEventProject)
		api.POST("/posts/:id/like", h.LikePost)
		api.GET("/transactionLogs", h.TransactionLogs)
	}
	return router
}

// pathID parses the :id parameter, answering 400 when it is not an object id.
func (h *Handler) pathID(c *gin.Context) (models.ID, bool) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		h.invalid(c, "id")
		return models.NilID, false
	}
	return id, true
}

func (h *Handler) invalid(c *gin.Context, param string) {
	Abort(c, http.StatusBadRequest, errors.CodeInvalidInput, h.translator.Translate(c.Request.Context(), "request.invalid"), param)
}

// respond writes v or err.
func respond[T any](c *gin.Context, v T, err error) {
	if err != nil {
		Fail(c, err)
		return
	}
	OK(c, v)
}

func (h *Handler) Organization(c *gin.Context) {
	if id, ok := h.pathID(c); ok {
		org, err := h.resolver.Organization(c.Request.Context(), id)
		respond(c, org, err)
	}
}

func (h *Handler) OrganizationCreatedBy(c *gin.Context) {
	h.organizationUser(c, h.resolver.OrganizationCreatedBy)
}

func (h *Handler) OrganizationUpdatedBy(c *gin.Context) {
	h.organizationUser(c, h.resolver.OrganizationUpdatedBy)
}

func (h *Handler) organizationUser(c *gin.Context, field func(ctx context.Context, parent models.Organization) (*models.User, error)) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	org, err := h.resolver.Organization(ctx, id)
	if err != nil {
		Fail(c, err)
		return
	}
	user, err := field(ctx, *org)
	respond(c, user, err)
}

func (h *Handler) EventProject(c *gin.Context) {
	if id, ok := h.pathID(c); ok {
		p, err := h.resolver.EventProject(c.Request.Context(), id)
		respond(c, p, err)
	}
}

func (h *Handler) EventProjectsByEvent(c *gin.Context) {
	if id, ok := h.pathID(c); ok {
		projects, err := h.resolver.EventProjectsByEvent(c.Request.Context(), id)
		respond(c, projects, err)
	}
}

func (h *Handler) EventProjectCreatedBy(c *gin.Context) {
	h.projectField(c, func(ctx context.Context, p models.EventProject) (any, error) {
		return h.resolver.EventProjectCreatedBy(ctx, p)
	})
}

func (h *Handler) EventProjectUpdatedBy(c *gin.Context) {
	h.projectField(c, func(ctx context.Context, p models.EventProject) (any, error) {
		return h.resolver.EventProjectUpdatedBy(ctx, p)
	})
}

func (h *Handler) EventProjectEvent(c *gin.Context) {
	h.projectField(c, func(ctx context.Context, p models.EventProject) (any, error) {
		return h.resolver.EventProjectEvent(ctx, p)
	})
}

func (h *Handler) projectField(c *gin.Context, field func(ctx context.Context, parent models.EventProject) (any, error)) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	p, err := h.resolver.EventProject(ctx, id)
	if err != nil {
		Fail(c, err)
		return
	}
	v, err := field(ctx, *p)
	respond(c, v, err)
}

func (h *Handler) Post(c *gin.Context) {
	if id, ok := h.pathID(c); ok {
		post, err := h.resolver.Post(c.Request.Context(), id)
		respond(c, post, err)
	}
}

func (h *Handler) CreateEventProject(c *gin.Context) {
	var in resolvers.CreateEventProjectInput
	if err := c.ShouldBindJSON(&in); err != nil {
		h.invalid(c, "body")
		return
	}
	p, err := h.resolver.CreateEventProject(c.Request.Context(), in, viewerFrom(c))
	if err != nil {
		Fail(c, err)
		return
	}
	Created(c, p)
}

func (h *Handler) UpdateEventProject(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var changes map[string]any
	if err := c.ShouldBindJSON(&changes); err != nil {
		h.invalid(c, "body")
		return
	}
	p, err := h.resolver.UpdateEventProject(c.Request.Context(), id, changes, viewerFrom(c))
	respond(c, p, err)
}

func (h *Handler) RemoveEventProject(c *gin.Context) {
	if id, ok := h.pathID(c); ok {
		p, err := h.resolver.RemoveEventProject(c.Request.Context(), id, viewerFrom(c))
		respond(c, p, err)
	}
}

func (h *Handler) LikePost(c *gin.Context) {
	if id, ok := h.pathID(c); ok {
		post, err := h.resolver.LikePost(c.Request.Context(), id, viewerFrom(c))
		respond(c, post, err)
	}
}

func (h *Handler) TransactionLogs(c *gin.Context) {
	limit := DefaultLogLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.invalid(c, "limit")
			return
		}
		limit = n
	}
	logs, err := h.resolver.TransactionLogs(c.Request.Context(), limit)
	respond(c, logs, err)
}
