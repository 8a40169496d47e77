package model

import "time"

type Driver struct {
	UserID                int64      `json:"userId"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	Phone                 string     `json:"phone"`
	FleetID               string     `json:"fleetId,omitempty"`
	FleetRole             FleetRole  `json:"fleetRole"`
	VehicleMake           string     `json:"vehicleMake"`
	VehiclePlate          string     `json:"vehiclePlate"`
	RegistrationExpiresAt *time.Time `json:"registrationExpiresAt,omitempty"`
	Rating                float64    `json:"rating"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// FleetScope is the mandatory visibility filter for driver-data queries.
// Exactly one of the three shapes applies: admin (All), a whole fleet
// (FleetID set), or a single driver (DriverID only).
type FleetScope struct {
	DriverID int64
	FleetID  string
	All      bool
}

// ScopeFor derives the query scope from the requesting principal. Owners and
// fleet admins see their whole fleet; independents, plain fleet drivers, and
// drivers without a fleet see only themselves.
func ScopeFor(user *AuthUser) FleetScope {
	if user.UserType == UserTypeAdmin {
		return FleetScope{All: true}
	}
	if user.FleetID != "" && (user.FleetRole == FleetRoleOwner || user.FleetRole == FleetRoleAdmin) {
		return FleetScope{FleetID: user.FleetID}
	}
	return FleetScope{DriverID: user.ID}
}

// Allows reports whether a driver id is visible under the scope.
func (s FleetScope) Allows(driver *Driver) bool {
	if s.All {
		return true
	}
	if s.FleetID != "" {
		return driver.FleetID == s.FleetID
	}
	return driver.UserID == s.DriverID
}

type UpdateDriverRequest struct {
	Name                  *string    `json:"name" binding:"omitempty,min=1"`
	Phone                 *string    `json:"phone"`
	FleetID               *string    `json:"fleetId"`
	FleetRole             *FleetRole `json:"fleetRole" binding:"omitempty,oneof=INDEPENDENT OWNER ADMIN DRIVER"`
	VehicleMake           *string    `json:"vehicleMake"`
	VehiclePlate          *string    `json:"vehiclePlate"`
	RegistrationExpiresAt *time.Time `json:"registrationExpiresAt"`
}

type DriverRating struct {
	ID        int64     `json:"id"`
	DriverID  int64     `json:"driverId"`
	ShipperID int64     `json:"shipperId"`
	LoadID    int64     `json:"loadId"`
	Stars     int       `json:"stars"`
	Comment   string    `json:"comment,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type RateDriverRequest struct {
	LoadID  int64  `json:"loadId" binding:"required"`
	Stars   int    `json:"stars" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}
