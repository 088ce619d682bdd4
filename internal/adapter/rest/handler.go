package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/guillermoBallester/querygate/internal/core/domain"
	"github.com/guillermoBallester/querygate/internal/core/service"
)

// Handler holds the services behind the REST routes.
type Handler struct {
	schema *service.SchemaService
	query  *service.QueryService
	ask    *service.AskService
}

type sqlRequest struct {
	SQL string `json:"sql"`
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

type schemaResponse struct {
	Tables      []domain.TableSchema `json:"tables"`
	Description string               `json:"description"`
}

type validateResponse struct {
	Valid bool   `json:"valid"`
	SQL   string `json:"sql"`
}

type queryResponse struct {
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// Schema returns the live schema as structured tables plus the prompt text
// the SQL generator sees.
func (h *Handler) Schema(c *gin.Context) {
	ctx := c.Request.Context()

	tables, err := h.schema.Snapshot(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}
	description, err := h.schema.Describe(ctx)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, schemaResponse{Tables: tables, Description: description})
}

// Validate checks a statement without executing it.
func (h *Handler) Validate(c *gin.Context) {
	var req sqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errBadRequest(err))
		return
	}

	ctx := service.WithToolName(c.Request.Context(), "rest.validate")
	sql, err := h.query.Validate(ctx, req.SQL)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, validateResponse{Valid: true, SQL: sql})
}

// Query validates and executes a statement.
func (h *Handler) Query(c *gin.Context) {
	var req sqlRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errBadRequest(err))
		return
	}

	ctx := service.WithToolName(c.Request.Context(), "rest.query")
	rows, err := h.query.Execute(ctx, req.SQL)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, queryResponse{Rows: rows, RowCount: len(rows)})
}

// Ask generates SQL for a question, then validates and executes it. When the
// generated statement is rejected, the error body carries it for inspection.
func (h *Handler) Ask(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errBadRequest(err))
		return
	}

	ctx := service.WithToolName(c.Request.Context(), "rest.ask")
	result, err := h.ask.Ask(ctx, req.Question)
	if err != nil {
		if result != nil && result.SQL != "" {
			c.Set(generatedSQLKey, result.SQL)
		}
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}
