package model

import "time"

type DocumentKind string

const (
	DocumentKindLicense      DocumentKind = "license"
	DocumentKindInsurance    DocumentKind = "insurance"
	DocumentKindRegistration DocumentKind = "registration"
)

// Document is a compliance document metadata row; the file itself lives in
// external object storage and is referenced by URL.
type Document struct {
	ID        int64        `json:"id"`
	DriverID  int64        `json:"driverId"`
	Kind      DocumentKind `json:"kind"`
	URL       string       `json:"url"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
}

type CreateDocumentRequest struct {
	Kind      DocumentKind `json:"kind" binding:"required,oneof=license insurance registration"`
	URL       string       `json:"url" binding:"required,url"`
	ExpiresAt *time.Time   `json:"expiresAt"`
}
