package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/meddispatch/backend/internal/model"
	"github.com/meddispatch/backend/internal/service"
)

type CronHandler struct {
	compliance *service.ComplianceService
}

func NewCronHandler(compliance *service.ComplianceService) *CronHandler {
	return &CronHandler{compliance: compliance}
}

// RegistrationScan runs the vehicle-registration expiry scan on demand. The
// route is guarded by CronAuthMiddleware.
func (h *CronHandler) RegistrationScan(c *gin.Context) {
	scanned, notified, err := h.compliance.ScanRegistrationExpiry(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, model.RegistrationScanResponse{
		Status:   "ok",
		Scanned:  scanned,
		Notified: notified,
	})
}
