package service

import (
	"context"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/db"
	"github.com/meddispatch/backend/internal/model"
)

type shippersRepo interface {
	GetShipper(ctx context.Context, userID int64) (*model.Shipper, error)
	UpdateShipper(ctx context.Context, userID int64, req model.UpdateShipperRequest) error
}

type ShipperService struct {
	repo shippersRepo
}

func NewShipperService(repo shippersRepo) *ShipperService {
	return &ShipperService{repo: repo}
}

// Get returns a shipper profile to the shipper themself or an admin.
func (s *ShipperService) Get(ctx context.Context, user *model.AuthUser, shipperID int64) (*model.Shipper, error) {
	if user.UserType != model.UserTypeAdmin && user.ID != shipperID {
		return nil, apperr.Authorization("you do not have access to this profile")
	}

	shipper, err := s.repo.GetShipper(ctx, shipperID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("shipper")
		}
		return nil, err
	}
	return shipper, nil
}

func (s *ShipperService) Update(ctx context.Context, user *model.AuthUser, shipperID int64, req model.UpdateShipperRequest) (*model.Shipper, error) {
	if user.UserType != model.UserTypeAdmin && user.ID != shipperID {
		return nil, apperr.Authorization("you can only edit your own profile")
	}

	if _, err := s.repo.GetShipper(ctx, shipperID); err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("shipper")
		}
		return nil, err
	}

	if err := s.repo.UpdateShipper(ctx, shipperID, req); err != nil {
		return nil, err
	}
	return s.repo.GetShipper(ctx, shipperID)
}
