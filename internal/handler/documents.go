package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/service"
)

type DocumentHandler struct {
	svc *service.DocumentService
}

func NewDocumentHandler(svc *service.DocumentService) *DocumentHandler {
	return &DocumentHandler{svc: svc}
}

// Delete removes a document. Drivers can only delete their own; admins any.
func (h *DocumentHandler) Delete(c *gin.Context) {
	documentID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), GetAuthUser(c), documentID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Status: "ok", Message: "document deleted"})
}
