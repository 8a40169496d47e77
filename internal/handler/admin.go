package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/service"
)

type AdminHandler struct {
	svc  *service.AdminService
	auth *service.AuthService
}

func NewAdminHandler(svc *service.AdminService, auth *service.AuthService) *AdminHandler {
	return &AdminHandler{svc: svc, auth: auth}
}

// Stats serves the admin dashboard aggregates.
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.svc.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ClearLoginAttempts lifts a lockout by wiping the account's login attempts.
func (h *AdminHandler) ClearLoginAttempts(c *gin.Context) {
	userType := model.UserType(c.Param("userType"))
	switch userType {
	case model.UserTypeDriver, model.UserTypeShipper, model.UserTypeAdmin:
	default:
		respondError(c, apperr.Validation("invalid path parameter", apperr.FieldError{
			Field:   "userType",
			Message: "must be one of: driver shipper admin",
		}))
		return
	}

	userID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if _, err := h.auth.ClearLockout(c.Request.Context(), userID, userType); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Status: "ok", Message: "login attempts cleared"})
}
