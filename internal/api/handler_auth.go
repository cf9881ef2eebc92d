package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"energy-admin/internal/gateway"
)

type signInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignIn handles POST /api/v1/auth/signin.
func (h *Handler) SignIn(c *gin.Context) {
	var req signInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	sess, err := h.auth.SignIn(c.Request.Context(), req.Email, req.Password)
	if errors.Is(err, gateway.ErrInvalidCredentials) {
		h.log.Warn("sign-in rejected", zap.String("email", req.Email))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		h.fail(c, nil, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}
