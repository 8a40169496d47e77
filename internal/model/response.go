package model

import (
	"time"

	"github.com/meddispatch/backend/internal/apperr"
)

// ErrorResponse is the uniform error envelope emitted by the translation
// boundary. Fields is present only for validation failures.
type ErrorResponse struct {
	Error     string              `json:"error"`
	Message   string              `json:"message"`
	Timestamp string              `json:"timestamp"`
	Fields    []apperr.FieldError `json:"fields,omitempty"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type RegistrationScanResponse struct {
	Status   string `json:"status"`
	Scanned  int    `json:"scanned"`
	Notified int    `json:"notified"`
}

type StatsResponse struct {
	Drivers        int64            `json:"drivers"`
	Shippers       int64            `json:"shippers"`
	LoadsByStatus  map[string]int64 `json:"loadsByStatus"`
	UnpaidInvoices int64            `json:"unpaidInvoices"`
	GeneratedAt    time.Time        `json:"generatedAt"`
}
