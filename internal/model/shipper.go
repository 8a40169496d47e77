package model

import "time"

type Shipper struct {
	UserID      int64     `json:"userId"`
	Email       string    `json:"email"`
	Name        string    `json:"name"`
	CompanyName string    `json:"companyName"`
	Phone       string    `json:"phone"`
	CreatedAt   time.Time `json:"createdAt"`
}

type UpdateShipperRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1"`
	CompanyName *string `json:"companyName"`
	Phone       *string `json:"phone"`
}
