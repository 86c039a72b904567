// Package problem renders domainerr.Error values as RFC 9457 problem+json
// responses. Nothing upstream of this package (internal/service,
// internal/domain, internal/kernel) knows about HTTP status codes.
package problem

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/langtest/catengine/internal/domainerr"
)

// Document is the RFC 9457 wire shape.
type Document struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// kindStatus maps a coarse Kind to its default HTTP status, mirroring the
// original's exception-to-status table (app/presentation/v1/error_handlers.py).
var kindStatus = map[domainerr.Kind]int{
	domainerr.NotFound:             http.StatusNotFound,
	domainerr.InvalidState:         http.StatusConflict,
	domainerr.InvalidInput:         http.StatusUnprocessableEntity,
	domainerr.ConfigurationMissing: http.StatusFailedDependency,
	domainerr.NoEligibleItems:      http.StatusUnprocessableEntity,
	domainerr.Transient:            http.StatusServiceUnavailable,
	domainerr.Internal:             http.StatusInternalServerError,
}

// defaultType is used when a domainerr.Error carries no specific Type slug.
var defaultType = map[domainerr.Kind]string{
	domainerr.NotFound:             "not-found",
	domainerr.InvalidState:         "invalid-state",
	domainerr.InvalidInput:         "invalid-input",
	domainerr.ConfigurationMissing: "configuration-missing",
	domainerr.NoEligibleItems:      "no-eligible-items",
	domainerr.Transient:            "transient",
	domainerr.Internal:             domainerr.TypeInternalServerError,
}

// Write renders err as a problem+json response on c, choosing a status and
// type slug from its Kind, or its Type override if set. Any error that is
// not a *domainerr.Error is treated as Internal and its detail is withheld.
func Write(c *gin.Context, err error) {
	var derr *domainerr.Error
	if !errors.As(err, &derr) {
		c.AbortWithStatusJSON(http.StatusInternalServerError, Document{
			Type:   defaultType[domainerr.Internal],
			Title:  "internal server error",
			Status: http.StatusInternalServerError,
		})
		return
	}

	status, ok := kindStatus[derr.Kind]
	if !ok {
		status = http.StatusInternalServerError
	}
	typ := derr.Type
	if typ == "" {
		typ = defaultType[derr.Kind]
	}

	detail := derr.Message
	if derr.Kind == domainerr.Internal || derr.Kind == domainerr.Transient {
		detail = ""
	}

	c.AbortWithStatusJSON(status, Document{
		Type:   typ,
		Title:  string(derr.Kind),
		Status: status,
		Detail: detail,
	})
}
