package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/service"
)

type InvoiceHandler struct {
	svc *service.InvoiceService
}

func NewInvoiceHandler(svc *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{svc: svc}
}

// Generate bills a shipper's delivered, uninvoiced loads for a period.
// Admin-only.
func (h *InvoiceHandler) Generate(c *gin.Context) {
	var req model.GenerateInvoiceRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	detail, err := h.svc.Generate(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, detail)
}

func (h *InvoiceHandler) List(c *gin.Context) {
	invoices, err := h.svc.List(c.Request.Context(), GetAuthUser(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoices)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	invoiceID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	detail, err := h.svc.Get(c.Request.Context(), GetAuthUser(c), invoiceID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	invoiceID, err := pathID(c, "id")
	if err != nil {
		respondError(c, err)
		return
	}

	var req model.UpdateInvoiceStatusRequest
	if err := bindJSON(c, &req); err != nil {
		respondError(c, err)
		return
	}

	invoice, err := h.svc.UpdateStatus(c.Request.Context(), invoiceID, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, invoice)
}
