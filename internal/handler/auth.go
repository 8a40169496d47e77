package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/service"
)

type AuthHandler struct {
	svc *service.AuthService
}

func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

// Register godoc
// @Summary Create a driver or shipper account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.RegisterRequest true "registration payload"
// @Success 201 {object} model.AuthMeResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 409 {object} model.ErrorResponse
// @Router /api/v1/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, token, err := h.svc.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	setSessionCookie(c, h.svc.CookieConfig(), token)
	c.JSON(http.StatusCreated, model.AuthMeResponse{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: user.UserType,
		Name:     user.Name,
	})
}

// Login godoc
// @Summary Authenticate and set the session cookie
// @Tags auth
// @Accept json
// @Produce json
// @Param request body model.LoginRequest true "credentials"
// @Success 200 {object} model.AuthMeResponse
// @Failure 401 {object} model.ErrorResponse
// @Router /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	user, token, err := h.svc.Login(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	setSessionCookie(c, h.svc.CookieConfig(), token)
	c.JSON(http.StatusOK, model.AuthMeResponse{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: user.UserType,
		Name:     user.Name,
	})
}

// Logout clears the session cookie. It succeeds whether or not a valid
// session was presented.
func (h *AuthHandler) Logout(c *gin.Context) {
	clearSessionCookie(c, h.svc.CookieConfig())
	c.JSON(http.StatusOK, model.MessageResponse{Status: "ok", Message: "logged out"})
}

// Me returns the authenticated principal.
func (h *AuthHandler) Me(c *gin.Context) {
	user := GetAuthUser(c)
	c.JSON(http.StatusOK, model.AuthMeResponse{
		UserID:   user.ID,
		Email:    user.Email,
		UserType: user.UserType,
		Name:     user.Name,
	})
}

// ForgotPassword answers identically whether or not the account exists.
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req model.ForgotPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.svc.ForgotPassword(c.Request.Context(), req.Email, req.UserType); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{
		Status:  "ok",
		Message: "if an account with that email exists, a reset link has been sent",
	})
}

func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req model.ResetPasswordRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	if err := h.svc.ResetPassword(c.Request.Context(), req); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.MessageResponse{Status: "ok", Message: "password updated"})
}
