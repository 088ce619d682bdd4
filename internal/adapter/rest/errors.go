package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/guillermoBallester/querygate/internal/core/domain"
	"github.com/guillermoBallester/querygate/internal/core/service"
)

// Reason codes for failures outside the validation taxonomy.
const (
	reasonInvalidRequest = "invalid_request"
	reasonEmptyQuestion  = "empty_question"
	reasonGeneration     = "generation_failed"
	reasonTimeout        = "timeout"
	reasonInternal       = "internal"
)

// generatedSQLKey is the gin context key Ask uses to hand the rejected
// statement to errorHandler.
const generatedSQLKey = "querygate.generated_sql"

var errInvalidRequest = errors.New("invalid request body")

func errBadRequest(err error) error {
	return fmt.Errorf("%w: %w", errInvalidRequest, err)
}

type errorBody struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
	SQL     string `json:"sql,omitempty"`
}

type errorResponse struct {
	Error errorBody `json:"error"`
}

// classify maps err to an HTTP status, a reason code and a client-safe message.
func classify(err error) (int, string, string) {
	switch reason := domain.Reason(err); reason {
	case domain.ReasonEmptyInput:
		return http.StatusBadRequest, reason, err.Error()
	case domain.ReasonUnsafeStatement, domain.ReasonInvalidSchemaReference:
		return http.StatusUnprocessableEntity, reason, err.Error()
	case domain.ReasonSchemaIntrospection:
		return http.StatusServiceUnavailable, reason, "could not read the database schema"
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return http.StatusBadRequest, reasonInvalidRequest, fmt.Sprintf("missing or invalid fields: %v", fields)
	case errors.Is(err, errInvalidRequest):
		return http.StatusBadRequest, reasonInvalidRequest, errInvalidRequest.Error()
	case errors.Is(err, service.ErrEmptyQuestion):
		return http.StatusBadRequest, reasonEmptyQuestion, err.Error()
	case errors.Is(err, service.ErrGeneration):
		return http.StatusBadGateway, reasonGeneration, "could not generate SQL for this question"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, reasonTimeout, "query timed out"
	default:
		return http.StatusInternalServerError, reasonInternal, "internal error, check server logs"
	}
}

// errorHandler renders the last error attached by a handler. Server-side
// failures are logged in full; clients only see the sanitized message.
func errorHandler(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err

		status, reason, message := classify(err)
		if status >= http.StatusInternalServerError {
			logger.ErrorContext(c.Request.Context(), "request failed",
				slog.String("http.route", c.FullPath()),
				slog.String("error.type", reason),
				slog.String("error", err.Error()),
			)
		}

		if c.Writer.Written() {
			return
		}
		body := errorBody{Reason: reason, Message: message}
		if sql, ok := c.Get(generatedSQLKey); ok {
			body.SQL, _ = sql.(string)
		}
		c.AbortWithStatusJSON(status, errorResponse{Error: body})
	}
}
