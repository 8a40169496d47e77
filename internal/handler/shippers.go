package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/service"
)

type ShipperHandler struct {
	svc *service.ShipperService
}

func NewShipperHandler(svc *service.ShipperService) *ShipperHandler {
	return &ShipperHandler{svc: svc}
}

func (h *ShipperHandler) Get(c *gin.Context) {
	shipperID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	shipper, err := h.svc.Get(c.Request.Context(), GetAuthUser(c), shipperID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipper)
}

func (h *ShipperHandler) Update(c *gin.Context) {
	shipperID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req model.UpdateShipperRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	shipper, err := h.svc.Update(c.Request.Context(), GetAuthUser(c), shipperID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, shipper)
}
