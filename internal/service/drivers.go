package service

import (
	"context"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/db"
	"github.com/meddispatch/backend/internal/model"
)

type driversRepo interface {
	GetDriverScoped(ctx context.Context, driverID int64, scope model.FleetScope) (*model.Driver, error)
	ListDrivers(ctx context.Context, scope model.FleetScope) ([]model.Driver, error)
	UpdateDriver(ctx context.Context, driverID int64, req model.UpdateDriverRequest) error
	ListDriverRatings(ctx context.Context, driverID int64) ([]model.DriverRating, error)
	InsertDriverRating(ctx context.Context, driverID, shipperID, loadID int64, stars int, comment string) (*model.DriverRating, error)
	GetLoad(ctx context.Context, loadID int64) (*model.Load, error)
}

type DriverService struct {
	repo driversRepo
}

func NewDriverService(repo driversRepo) *DriverService {
	return &DriverService{repo: repo}
}

// List returns the drivers the caller is allowed to see under fleet scoping.
func (s *DriverService) List(ctx context.Context, user *model.AuthUser) ([]model.Driver, error) {
	return s.repo.ListDrivers(ctx, model.ScopeFor(user))
}

// Get fetches a single driver under fleet scoping; a driver outside the
// caller's scope is indistinguishable from a missing one.
func (s *DriverService) Get(ctx context.Context, user *model.AuthUser, driverID int64) (*model.Driver, error) {
	driver, err := s.repo.GetDriverScoped(ctx, driverID, model.ScopeFor(user))
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("driver")
		}
		return nil, err
	}
	return driver, nil
}

// Update modifies a driver profile. Drivers edit themselves; admins edit
// anyone. Fleet membership changes are admin-only.
func (s *DriverService) Update(ctx context.Context, user *model.AuthUser, driverID int64, req model.UpdateDriverRequest) (*model.Driver, error) {
	if user.UserType != model.UserTypeAdmin {
		if user.ID != driverID {
			return nil, apperr.Authorization("you can only edit your own profile")
		}
		if req.FleetID != nil || req.FleetRole != nil {
			return nil, apperr.Authorization("fleet membership is managed by an administrator")
		}
	}

	if _, err := s.repo.GetDriverScoped(ctx, driverID, model.FleetScope{All: true}); err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("driver")
		}
		return nil, err
	}

	if err := s.repo.UpdateDriver(ctx, driverID, req); err != nil {
		return nil, err
	}
	return s.repo.GetDriverScoped(ctx, driverID, model.FleetScope{All: true})
}

func (s *DriverService) ListRatings(ctx context.Context, user *model.AuthUser, driverID int64) ([]model.DriverRating, error) {
	// Shippers may review any driver's ratings; drivers are fleet-scoped.
	if user.UserType == model.UserTypeDriver {
		if _, err := s.Get(ctx, user, driverID); err != nil {
			return nil, err
		}
	}
	return s.repo.ListDriverRatings(ctx, driverID)
}

// Rate records a shipper's rating for a delivered load carried by the driver.
func (s *DriverService) Rate(ctx context.Context, shipperID, driverID int64, req model.RateDriverRequest) (*model.DriverRating, error) {
	load, err := s.repo.GetLoad(ctx, req.LoadID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("load")
		}
		return nil, err
	}
	if load.ShipperID != shipperID {
		return nil, apperr.Authorization("you can only rate your own loads")
	}
	if load.DriverID == nil || *load.DriverID != driverID {
		return nil, apperr.Validation("load was not carried by this driver")
	}
	if load.Status != model.LoadStatusDelivered {
		return nil, apperr.Validation("only delivered loads can be rated")
	}

	rating, err := s.repo.InsertDriverRating(ctx, driverID, shipperID, req.LoadID, req.Stars, req.Comment)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, apperr.Conflict("this load has already been rated")
		}
		return nil, err
	}
	return rating, nil
}
