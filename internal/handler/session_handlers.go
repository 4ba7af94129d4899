package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *DesignHandler) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "email and password are required"})
		return
	}

	user, token, err := h.sessions.SignIn(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{User: *user, Token: token})
}

func (h *DesignHandler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "name, email and password are required"})
		return
	}
	if !req.AgreeTerms {
		c.JSON(http.StatusBadRequest, APIError{Message: "terms must be accepted", Code: "terms"})
		return
	}

	user, token, err := h.sessions.SignUp(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusCreated, sessionResponse{User: *user, Token: token})
}

func (h *DesignHandler) providerLogin(c *gin.Context) {
	var req providerLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, APIError{Message: "idToken is required"})
		return
	}

	user, token, err := h.sessions.SignInWithProviderToken(c.Request.Context(), req.IDToken)
	if err != nil {
		handleServiceError(c, err, h.logger)
		return
	}
	c.JSON(http.StatusOK, sessionResponse{User: *user, Token: token})
}

func (h *DesignHandler) me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{Message: "missing principal"})
		return
	}
	c.JSON(http.StatusOK, user)
}

// logout — fire-and-forget: отзыв токенов может не удаться, но сессия на
// клиенте завершается в любом случае.
func (h *DesignHandler) logout(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, APIError{Message: "missing principal"})
		return
	}

	if err := h.sessions.SignOut(c.Request.Context(), user.UID); err != nil {
		h.logger.Warn("Sign-out revocation failed", zap.String("uid", user.UID), zap.Error(err))
	}
	h.workflows.Drop(user.UID)
	c.JSON(http.StatusOK, gin.H{"redirect": "/login"})
}
