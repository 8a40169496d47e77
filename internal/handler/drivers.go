package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/service"
)

type DriverHandler struct {
	svc  *service.DriverService
	docs *service.DocumentService
}

func NewDriverHandler(svc *service.DriverService, docs *service.DocumentService) *DriverHandler {
	return &DriverHandler{svc: svc, docs: docs}
}

// List returns drivers visible to the caller under fleet scoping.
func (h *DriverHandler) List(c *gin.Context) {
	drivers, err := h.svc.List(c.Request.Context(), GetAuthUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, drivers)
}

func (h *DriverHandler) Get(c *gin.Context) {
	driverID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	driver, err := h.svc.Get(c.Request.Context(), GetAuthUser(c), driverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}

func (h *DriverHandler) Update(c *gin.Context) {
	driverID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req model.UpdateDriverRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	driver, err := h.svc.Update(c.Request.Context(), GetAuthUser(c), driverID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, driver)
}

func (h *DriverHandler) ListRatings(c *gin.Context) {
	driverID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	ratings, err := h.svc.ListRatings(c.Request.Context(), GetAuthUser(c), driverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ratings)
}

// Rate records a shipper's rating for a delivered load.
func (h *DriverHandler) Rate(c *gin.Context) {
	driverID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req model.RateDriverRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	rating, err := h.svc.Rate(c.Request.Context(), GetAuthUser(c).ID, driverID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, rating)
}

// CreateDocument files compliance document metadata for a driver.
func (h *DriverHandler) CreateDocument(c *gin.Context) {
	driverID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req model.CreateDocumentRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	doc, err := h.docs.Create(c.Request.Context(), GetAuthUser(c), driverID, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

// ListDocuments returns a driver's documents under fleet scoping.
func (h *DriverHandler) ListDocuments(c *gin.Context) {
	driverID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	docs, err := h.docs.List(c.Request.Context(), GetAuthUser(c), driverID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, docs)
}
