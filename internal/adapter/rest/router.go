// Package rest exposes the query gate over plain HTTP+JSON using gin.
package rest

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/guillermoBallester/querygate/internal/core/service"
)

// NewRouter builds the /api/v1 routes. ask may be nil, in which case
// POST /api/v1/ask is not registered. Authentication is applied by the
// caller around the returned handler.
func NewRouter(schema *service.SchemaService, query *service.QueryService, ask *service.AskService, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(errorHandler(logger))

	h := &Handler{schema: schema, query: query, ask: ask}

	api := router.Group("/api/v1")
	{
		api.GET("/schema", h.Schema)
		api.POST("/validate", h.Validate)
		api.POST("/query", h.Query)
		if ask != nil {
			api.POST("/ask", h.Ask)
		}
	}

	return router
}
