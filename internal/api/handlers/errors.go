package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/andresuchdata/scm-dashboard/backend-go/internal/backend"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/cache"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/repository"
	"github.com/andresuchdata/scm-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

// respondError renders {"error": summary, "details": ...} with a status
// derived from the error chain.
func respondError(c *gin.Context, summary string, err error) {
	status := http.StatusInternalServerError
	details := err.Error()

	var apiErr *backend.APIError
	switch {
	case errors.As(err, &apiErr):
		status = http.StatusBadGateway
		details = apiErr.Message
	case errors.Is(err, repository.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, service.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, cache.ErrLocked):
		status = http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	}

	event := log.Warn()
	if status >= http.StatusInternalServerError {
		event = log.Error()
	}
	event.Err(err).Int("status", status).Str("path", c.Request.URL.Path).Msg(summary)

	c.JSON(status, gin.H{"error": summary, "details": details})
}

// respondBindError renders a 400 for a request that failed binding.
func respondBindError(c *gin.Context, err error) {
	details := err.Error()

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Namespace(), fe.Tag()))
		}
		details = strings.Join(msgs, "; ")
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": details})
}
