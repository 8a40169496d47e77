package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/service"
)

type NotificationHandler struct {
	svc *service.NotificationService
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.svc.List(c.Request.Context(), GetAuthUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.svc.MarkRead(c.Request.Context(), GetAuthUser(c), notificationID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Status: "ok", Message: "notification marked read"})
}
