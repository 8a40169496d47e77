package model

import "time"

// Facility is a pickup or dropoff location. Coordinates are filled in by the
// geocoder on creation when the upstream service resolves the address.
type Facility struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	State     string    `json:"state"`
	Zip       string    `json:"zip"`
	Lat       *float64  `json:"lat,omitempty"`
	Lon       *float64  `json:"lon,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type CreateFacilityRequest struct {
	Name    string `json:"name" binding:"required"`
	Address string `json:"address" binding:"required"`
	City    string `json:"city" binding:"required"`
	State   string `json:"state" binding:"required"`
	Zip     string `json:"zip"`
}

type UpdateFacilityRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1"`
	Address *string `json:"address" binding:"omitempty,min=1"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	Zip     *string `json:"zip"`
}
