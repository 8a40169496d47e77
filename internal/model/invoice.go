package model

import "time"

type InvoiceStatus string

const (
	InvoiceStatusDraft InvoiceStatus = "DRAFT"
	InvoiceStatusSent  InvoiceStatus = "SENT"
	InvoiceStatusPaid  InvoiceStatus = "PAID"
)

type Invoice struct {
	ID          int64         `json:"id"`
	Number      string        `json:"number"`
	ShipperID   int64         `json:"shipperId"`
	PeriodStart time.Time     `json:"periodStart"`
	PeriodEnd   time.Time     `json:"periodEnd"`
	TotalCents  int64         `json:"totalCents"`
	Status      InvoiceStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

// InvoiceDetail includes the delivered loads billed on the invoice.
type InvoiceDetail struct {
	Invoice
	Loads []Load `json:"loads"`
}

type GenerateInvoiceRequest struct {
	ShipperID   int64     `json:"shipperId" binding:"required"`
	PeriodStart time.Time `json:"periodStart" binding:"required"`
	PeriodEnd   time.Time `json:"periodEnd" binding:"required"`
}

type UpdateInvoiceStatusRequest struct {
	Status InvoiceStatus `json:"status" binding:"required,oneof=SENT PAID"`
}
