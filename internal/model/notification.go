package model

import "time"

type NotificationKind string

const (
	NotificationKindLoadAssigned       NotificationKind = "load_assigned"
	NotificationKindLoadStatus         NotificationKind = "load_status"
	NotificationKindRegistrationExpiry NotificationKind = "registration_expiry"
	NotificationKindInvoice            NotificationKind = "invoice"
)

type Notification struct {
	ID        int64            `json:"id"`
	UserID    int64            `json:"userId"`
	UserType  UserType         `json:"userType"`
	Kind      NotificationKind `json:"kind"`
	Body      string           `json:"body"`
	ReadAt    *time.Time       `json:"readAt,omitempty"`
	CreatedAt time.Time        `json:"createdAt"`
}
