package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"energy-admin/internal/auth"
	"energy-admin/internal/gateway"
	"energy-admin/internal/resource"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	gw   gateway.Gateway
	reg  *resource.Registry
	auth *auth.Service
	log  *zap.Logger
}

// NewHandler creates a new API handler.
func NewHandler(gw gateway.Gateway, reg *resource.Registry, authSvc *auth.Service, log *zap.Logger) *Handler {
	return &Handler{
		gw:   gw,
		reg:  reg,
		auth: authSvc,
		log:  log,
	}
}

// fail writes the response for err and aborts the chain.
func (h *Handler) fail(c *gin.Context, d *resource.Descriptor, err error) {
	var conflict *gateway.ConflictError
	var verr *gateway.ValidationError
	switch {
	case errors.As(err, &conflict):
		field := conflict.Field
		msg := "a record with these values already exists"
		if d != nil && field != "" {
			msg = d.ConflictMessage(field)
		}
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"errors": []gateway.FieldError{
			{Code: gateway.CodeUniqueViolation, Field: field, Message: msg},
		}})
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusUnprocessableEntity, gin.H{"errors": verr.Fields})
	case errors.Is(err, gateway.ErrNotAuthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	case errors.Is(err, gateway.ErrUnknownTable), errors.Is(err, gateway.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, gateway.ErrUnknownColumn):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		_ = c.Error(err)
		h.log.Error("request failed", zap.Error(err), zap.String("path", c.FullPath()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

// descriptor resolves :table or writes 404.
func (h *Handler) descriptor(c *gin.Context) (*resource.Descriptor, bool) {
	d, err := h.reg.Get(c.Param("table"))
	if err != nil {
		h.fail(c, nil, err)
		return nil, false
	}
	return d, true
}
