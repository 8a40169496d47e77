package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/service"
)

type FacilityHandler struct {
	svc *service.FacilityService
}

func NewFacilityHandler(svc *service.FacilityService) *FacilityHandler {
	return &FacilityHandler{svc: svc}
}

// Create stores a facility; its address is geocoded best-effort.
func (h *FacilityHandler) Create(c *gin.Context) {
	var req model.CreateFacilityRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	facility, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, facility)
}

func (h *FacilityHandler) List(c *gin.Context) {
	facilities, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, facilities)
}

func (h *FacilityHandler) Get(c *gin.Context) {
	facilityID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	facility, err := h.svc.Get(c.Request.Context(), facilityID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, facility)
}

func (h *FacilityHandler) Update(c *gin.Context) {
	facilityID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req model.UpdateFacilityRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	facility, err := h.svc.Update(c.Request.Context(), facilityID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, facility)
}

func (h *FacilityHandler) Delete(c *gin.Context) {
	facilityID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), facilityID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Status: "ok", Message: "facility deleted"})
}
