package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/service"
)

type LoadHandler struct {
	svc *service.LoadService
}

func NewLoadHandler(svc *service.LoadService) *LoadHandler {
	return &LoadHandler{svc: svc}
}

// Create godoc
// @Summary Post a new load
// @Tags loads
// @Accept json
// @Produce json
// @Param request body model.CreateLoadRequest true "load payload"
// @Success 201 {object} model.Load
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/v1/loads [post]
func (h *LoadHandler) Create(c *gin.Context) {
	var req model.CreateLoadRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	load, err := h.svc.Create(c.Request.Context(), GetAuthUser(c).ID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, load)
}

// List routes to the caller-appropriate view: shippers see their own loads,
// drivers see loads assigned to them, admins see everything.
func (h *LoadHandler) List(c *gin.Context) {
	user := GetAuthUser(c)

	var (
		loads []model.Load
		err   error
	)
	switch user.UserType {
	case model.UserTypeShipper:
		loads, err = h.svc.ListForShipper(c.Request.Context(), user.ID)
	case model.UserTypeDriver:
		loads, err = h.svc.ListForDriver(c.Request.Context(), user.ID)
	default:
		loads, err = h.svc.ListAll(c.Request.Context())
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loads)
}

// ListAvailable returns unassigned pending loads for drivers to browse.
func (h *LoadHandler) ListAvailable(c *gin.Context) {
	loads, err := h.svc.ListAvailable(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, loads)
}

func (h *LoadHandler) Get(c *gin.Context) {
	loadID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	load, err := h.svc.Get(c.Request.Context(), GetAuthUser(c), loadID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, load)
}

// Accept claims a pending load for the calling driver.
func (h *LoadHandler) Accept(c *gin.Context) {
	loadID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	load, err := h.svc.Accept(c.Request.Context(), GetAuthUser(c).ID, loadID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, load)
}

// UpdateStatus advances an assigned load one lifecycle step.
func (h *LoadHandler) UpdateStatus(c *gin.Context) {
	loadID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req model.UpdateLoadStatusRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	load, err := h.svc.AdvanceStatus(c.Request.Context(), GetAuthUser(c).ID, loadID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, load)
}

// Cancel cancels the caller's own pending load.
func (h *LoadHandler) Cancel(c *gin.Context) {
	loadID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	if err := h.svc.Cancel(c.Request.Context(), GetAuthUser(c).ID, loadID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Status: "ok", Message: "load cancelled"})
}
