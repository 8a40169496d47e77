package model

import "time"

type UserType string

const (
	UserTypeDriver  UserType = "driver"
	UserTypeShipper UserType = "shipper"
	UserTypeAdmin   UserType = "admin"
)

// FleetRole classifies a driver's visibility scope within a fleet.
type FleetRole string

const (
	FleetRoleIndependent FleetRole = "INDEPENDENT"
	FleetRoleOwner       FleetRole = "OWNER"
	FleetRoleAdmin       FleetRole = "ADMIN"
	FleetRoleDriver      FleetRole = "DRIVER"
)

// User is an account row shared by all three portals. Email is unique per
// user type, so the same address may hold both a driver and a shipper account.
type User struct {
	ID           int64
	Email        string
	UserType     UserType
	Name         string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is the state carried inside the signed auth_session cookie. The
// cookie is the only durable authentication artifact; there is no server-side
// session store.
type Session struct {
	UserID    int64
	UserType  UserType
	Email     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// AuthUser is the re-resolved principal attached to the request context after
// the session cookie has been verified against the users table. Fleet fields
// are populated for drivers only.
type AuthUser struct {
	ID        int64
	Email     string
	UserType  UserType
	Name      string
	FleetID   string
	FleetRole FleetRole
}

type LoginAttempt struct {
	ID        int64
	Email     string
	UserType  UserType
	Success   bool
	CreatedAt time.Time
}

type PasswordResetToken struct {
	ID        int64
	UserID    int64
	UserType  UserType
	TokenHash string
	ExpiresAt time.Time
	UsedAt    *time.Time
	CreatedAt time.Time
}

type RegisterRequest struct {
	Email       string   `json:"email" binding:"required,email"`
	Password    string   `json:"password" binding:"required,min=8"`
	Name        string   `json:"name" binding:"required"`
	UserType    UserType `json:"userType" binding:"required,oneof=driver shipper"`
	CompanyName string   `json:"companyName"`
}

type LoginRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	Password string   `json:"password" binding:"required"`
	UserType UserType `json:"userType" binding:"required,oneof=driver shipper admin"`
}

type ForgotPasswordRequest struct {
	Email    string   `json:"email" binding:"required,email"`
	UserType UserType `json:"userType" binding:"required,oneof=driver shipper admin"`
}

type ResetPasswordRequest struct {
	Token       string   `json:"token" binding:"required"`
	UserType    UserType `json:"userType" binding:"required,oneof=driver shipper admin"`
	NewPassword string   `json:"newPassword" binding:"required,min=8"`
}

type AuthMeResponse struct {
	UserID   int64    `json:"userId"`
	Email    string   `json:"email"`
	UserType UserType `json:"userType"`
	Name     string   `json:"name"`
}
