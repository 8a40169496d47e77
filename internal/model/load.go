package model

import "time"

// LoadStatus follows a linear lifecycle; CANCELLED is the only branch and is
// reachable from PENDING alone.
type LoadStatus string

const (
	LoadStatusPending   LoadStatus = "PENDING"
	LoadStatusAssigned  LoadStatus = "ASSIGNED"
	LoadStatusPickedUp  LoadStatus = "PICKED_UP"
	LoadStatusInTransit LoadStatus = "IN_TRANSIT"
	LoadStatusDelivered LoadStatus = "DELIVERED"
	LoadStatusCancelled LoadStatus = "CANCELLED"
)

var loadStatusOrder = []LoadStatus{
	LoadStatusPending,
	LoadStatusAssigned,
	LoadStatusPickedUp,
	LoadStatusInTransit,
	LoadStatusDelivered,
}

// NextLoadStatus returns the single legal forward step from the given status.
// Terminal and unknown statuses report ok=false.
func NextLoadStatus(s LoadStatus) (LoadStatus, bool) {
	for i, status := range loadStatusOrder {
		if status == s && i+1 < len(loadStatusOrder) {
			return loadStatusOrder[i+1], true
		}
	}
	return "", false
}

type Load struct {
	ID                int64      `json:"id"`
	Reference         string     `json:"reference"`
	ShipperID         int64      `json:"shipperId"`
	DriverID          *int64     `json:"driverId,omitempty"`
	PickupFacilityID  int64      `json:"pickupFacilityId"`
	DropoffFacilityID int64      `json:"dropoffFacilityId"`
	Status            LoadStatus `json:"status"`
	PriceCents        int64      `json:"priceCents"`
	Notes             string     `json:"notes,omitempty"`
	InvoiceID         *int64     `json:"invoiceId,omitempty"`
	DeliveredAt       *time.Time `json:"deliveredAt,omitempty"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

type CreateLoadRequest struct {
	PickupFacilityID  int64  `json:"pickupFacilityId" binding:"required"`
	DropoffFacilityID int64  `json:"dropoffFacilityId" binding:"required"`
	PriceCents        int64  `json:"priceCents" binding:"required,gt=0"`
	Notes             string `json:"notes"`
}

type UpdateLoadStatusRequest struct {
	Status LoadStatus `json:"status" binding:"required,oneof=PICKED_UP IN_TRANSIT DELIVERED"`
}
