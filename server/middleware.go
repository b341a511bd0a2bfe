/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/suparena/eventgraph/errors"
	"github.com/suparena/eventgraph/i18n"
	"github.com/suparena/eventgraph/models"
)

// contextViewer is the gin context key holding the authenticated user's id.
const contextViewer = "viewer"

// Logger returns a zap-based request logging middleware.
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		logger.Info("request",
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// Language stores the request's Accept-Language in its context for the translator.
func Language() gin.HandlerFunc {
	return func(c *gin.Context) {
		if accept := c.GetHeader("Accept-Language"); accept != "" {
			c.Request = c.Request.WithContext(i18n.WithLanguage(c.Request.Context(), accept))
		}
		c.Next()
	}
}

// JWT validates the bearer token and stores the viewer in the gin context. Failures answer 401
// with the translated auth.required message.
func JWT(jwtService *JWTService, tr errors.Translator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			abortUnauthorized(c, tr)
			return
		}
		viewer, err := jwtService.Validate(token)
		if err != nil {
			abortUnauthorized(c, tr)
			return
		}
		c.Set(contextViewer, viewer)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, tr errors.Translator) {
	Abort(c, http.StatusUnauthorized, errors.CodeUnauthorized, tr.Translate(c.Request.Context(), "auth.required"), "Authorization")
}

// CORS sets cross-origin headers. allowedOrigins is "*" or a comma-separated list.
func CORS(allowedOrigins string) gin.HandlerFunc {
	origins := make(map[string]bool)
	for _, o := range strings.Split(allowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins[o] = true
		}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allow := ""
		if len(origins) == 0 || origins["*"] {
			allow = "*"
		} else if origins[origin] {
			allow = origin
		}
		if allow != "" {
			c.Header("Access-Control-Allow-Origin", allow)
			c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept-Language")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

func viewerFrom(c *gin.Context) models.ID {
	v, _ := c.Get(contextViewer)
	id, _ := v.(models.ID)
	return id
}
