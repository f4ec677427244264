package handler

import (
	"errors"
	"net/http"

	"github.com/fotowand/backend/internal/model"
	"github.com/fotowand/backend/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const messageGeneralError = "GENERAL_ERROR"

type AuthHandler struct {
	svc    *service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{svc: svc, logger: logger}
}

// GetCurrentUser godoc
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.UserEnvelope
// @Failure 401 {object} model.Response
// @Failure 403 {object} model.Response
// @Failure 404 {object} model.Response
// @Router /api/v1/auth [get]
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	user, err := h.svc.GetCurrentUser(c.Request.Context(), bearerToken(c))
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.UserEnvelope{Message: service.MessageOK, Data: user.Public()})
}

// Token godoc
// @Summary Refresh access token
// @Description Consumes the refresh token and returns a new token pair.
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RefreshRequest true "Refresh token"
// @Success 200 {object} model.TokenResponse
// @Failure 401 {object} model.Response
// @Failure 403 {object} model.Response
// @Router /api/v1/auth/token [post]
func (h *AuthHandler) Token(c *gin.Context) {
	var req model.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeAuthError(c, service.ErrRefreshTokenMissing)
		return
	}

	pair, err := h.svc.RefreshAccessToken(c.Request.Context(), req.RefreshToken)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.TokenResponse{Message: service.MessageAccessTokenRefreshed, Data: *pair})
}

// Login godoc
// @Summary Login
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "Email and password"
// @Success 200 {object} model.TokenResponse
// @Failure 400 {object} model.Response
// @Failure 429 {object} model.Response
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeAuthError(c, service.ErrLoginIncorrect)
		return
	}

	pair, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.TokenResponse{Message: service.MessageOK, Data: *pair})
}

// ChangePassword godoc
// @Summary Change password
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.ChangePasswordRequest true "Current credentials and new password"
// @Success 200 {object} model.Response
// @Failure 400 {object} model.Response
// @Failure 429 {object} model.Response
// @Router /api/v1/auth/changePassword [put]
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var req model.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeAuthError(c, service.ErrLoginIncorrect)
		return
	}

	if err := h.svc.ChangePassword(c.Request.Context(), req.Email, req.OldPassword, req.NewPassword1); err != nil {
		h.writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{Message: service.MessagePasswordChangeSuccessful})
}

// CreateAccount godoc
// @Summary Create account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.CreateAccountRequest true "Username, email and password"
// @Success 200 {object} model.Response
// @Failure 400 {object} model.Response
// @Failure 429 {object} model.Response
// @Router /api/v1/auth/createAccount [post]
func (h *AuthHandler) CreateAccount(c *gin.Context) {
	var req model.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.writeAuthError(c, service.ErrCreateAccountFailed)
		return
	}

	if err := h.svc.CreateAccount(c.Request.Context(), req.Username, req.Email, req.Password1); err != nil {
		h.writeAuthError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.Response{Message: service.MessageOK})
}

// Logout godoc
// @Summary Logout
// @Description Revokes the refresh token if one is given. Always succeeds.
// @Tags auth
// @Produce json
// @Param refreshToken query string false "Refresh token to revoke"
// @Success 200 {object} model.Response
// @Router /api/v1/auth/logout [get]
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.svc.Logout(c.Request.Context(), c.Query("refreshToken")); err != nil {
		h.logger.Warn("revoke refresh token", zap.Error(err))
	}
	c.JSON(http.StatusOK, model.Response{Message: service.MessageOK})
}

// Permission godoc
// @Summary Get permission of the caller
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.PermissionResponse
// @Failure 401 {object} model.Response
// @Router /api/v1/auth/permission [get]
func (h *AuthHandler) Permission(c *gin.Context) {
	granted := GetPermission(c)
	message := service.MessagePermissionNone
	if granted {
		message = service.MessagePermissionAdmin
	}
	c.JSON(http.StatusOK, model.PermissionResponse{
		Message: message,
		Data:    model.Permission{Permission: granted},
	})
}

func (h *AuthHandler) writeAuthError(c *gin.Context, err error) {
	status := authErrorStatus(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("auth request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
		c.JSON(status, model.Response{Message: messageGeneralError})
		return
	}
	c.JSON(status, model.Response{Message: err.Error()})
}

func authErrorStatus(err error) int {
	switch {
	case errors.Is(err, service.ErrLoginIncorrect),
		errors.Is(err, service.ErrCreateAccountFailed),
		errors.Is(err, service.ErrEmailInUse),
		errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrRefreshTokenMissing),
		errors.Is(err, service.ErrAccessTokenExpired):
		return http.StatusUnauthorized
	case errors.Is(err, service.ErrRefreshTokenInvalid),
		errors.Is(err, service.ErrAccessTokenMissing),
		errors.Is(err, service.ErrAccessTokenInvalid):
		return http.StatusForbidden
	case errors.Is(err, service.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
