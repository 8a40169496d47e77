package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/db"
	"github.com/meddispatch/backend/internal/model"
)

type loadsRepo interface {
	CreateLoad(ctx context.Context, shipperID int64, reference string, req model.CreateLoadRequest) (*model.Load, error)
	GetLoad(ctx context.Context, loadID int64) (*model.Load, error)
	GetFacility(ctx context.Context, facilityID int64) (*model.Facility, error)
	ListLoadsByShipper(ctx context.Context, shipperID int64) ([]model.Load, error)
	ListLoadsByDriver(ctx context.Context, driverID int64) ([]model.Load, error)
	ListAvailableLoads(ctx context.Context) ([]model.Load, error)
	ListAllLoads(ctx context.Context) ([]model.Load, error)
	AssignLoad(ctx context.Context, loadID, driverID int64) (bool, error)
	AdvanceLoadStatus(ctx context.Context, loadID, driverID int64, from, to model.LoadStatus) (bool, error)
	CancelLoad(ctx context.Context, loadID, shipperID int64) (bool, error)
	InsertNotification(ctx context.Context, userID int64, userType model.UserType, kind model.NotificationKind, body string) error
}

type LoadService struct {
	repo   loadsRepo
	logger zerolog.Logger
}

func NewLoadService(repo loadsRepo, logger zerolog.Logger) *LoadService {
	return &LoadService{repo: repo, logger: logger}
}

// Create posts a new load for a shipper after checking both facilities exist.
func (s *LoadService) Create(ctx context.Context, shipperID int64, req model.CreateLoadRequest) (*model.Load, error) {
	for _, facilityID := range []int64{req.PickupFacilityID, req.DropoffFacilityID} {
		if _, err := s.repo.GetFacility(ctx, facilityID); err != nil {
			if db.IsNoRows(err) {
				return nil, apperr.NotFound("facility")
			}
			return nil, err
		}
	}

	return s.repo.CreateLoad(ctx, shipperID, uuid.NewString(), req)
}

// Get returns a load visible to the caller: the owning shipper, the assigned
// driver, or an admin.
func (s *LoadService) Get(ctx context.Context, user *model.AuthUser, loadID int64) (*model.Load, error) {
	load, err := s.repo.GetLoad(ctx, loadID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("load")
		}
		return nil, err
	}
	if !canViewLoad(user, load) {
		return nil, apperr.Authorization("you do not have access to this load")
	}
	return load, nil
}

func (s *LoadService) ListForShipper(ctx context.Context, shipperID int64) ([]model.Load, error) {
	return s.repo.ListLoadsByShipper(ctx, shipperID)
}

func (s *LoadService) ListForDriver(ctx context.Context, driverID int64) ([]model.Load, error) {
	return s.repo.ListLoadsByDriver(ctx, driverID)
}

func (s *LoadService) ListAvailable(ctx context.Context) ([]model.Load, error) {
	return s.repo.ListAvailableLoads(ctx)
}

func (s *LoadService) ListAll(ctx context.Context) ([]model.Load, error) {
	return s.repo.ListAllLoads(ctx)
}

// Accept assigns a pending load to the calling driver. Losing a concurrent
// claim surfaces as a conflict, not an internal error.
func (s *LoadService) Accept(ctx context.Context, driverID, loadID int64) (*model.Load, error) {
	load, err := s.repo.GetLoad(ctx, loadID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("load")
		}
		return nil, err
	}

	ok, err := s.repo.AssignLoad(ctx, loadID, driverID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Conflict("load is no longer available")
	}

	body := fmt.Sprintf("Load %s has been accepted by a driver.", load.Reference)
	if err := s.repo.InsertNotification(ctx, load.ShipperID, model.UserTypeShipper, model.NotificationKindLoadAssigned, body); err != nil {
		s.logger.Error().Err(err).Int64("loadId", loadID).Msg("failed to notify shipper of assignment")
	}

	return s.repo.GetLoad(ctx, loadID)
}

// AdvanceStatus moves a load one step forward in its lifecycle. Only the
// assigned driver may advance it, and only to the immediate next status.
func (s *LoadService) AdvanceStatus(ctx context.Context, driverID, loadID int64, target model.LoadStatus) (*model.Load, error) {
	load, err := s.repo.GetLoad(ctx, loadID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("load")
		}
		return nil, err
	}
	if load.DriverID == nil || *load.DriverID != driverID {
		return nil, apperr.Authorization("load is not assigned to you")
	}

	next, ok := model.NextLoadStatus(load.Status)
	if !ok || next != target {
		return nil, apperr.Validation("invalid status transition", apperr.FieldError{
			Field:   "status",
			Message: fmt.Sprintf("cannot move from %s to %s", load.Status, target),
		})
	}

	applied, err := s.repo.AdvanceLoadStatus(ctx, loadID, driverID, load.Status, target)
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, apperr.Conflict("load status changed concurrently")
	}

	body := fmt.Sprintf("Load %s is now %s.", load.Reference, target)
	if err := s.repo.InsertNotification(ctx, load.ShipperID, model.UserTypeShipper, model.NotificationKindLoadStatus, body); err != nil {
		s.logger.Error().Err(err).Int64("loadId", loadID).Msg("failed to notify shipper of status change")
	}

	return s.repo.GetLoad(ctx, loadID)
}

// Cancel cancels a shipper's own load while it is still pending.
func (s *LoadService) Cancel(ctx context.Context, shipperID, loadID int64) error {
	load, err := s.repo.GetLoad(ctx, loadID)
	if err != nil {
		if db.IsNoRows(err) {
			return apperr.NotFound("load")
		}
		return err
	}
	if load.ShipperID != shipperID {
		return apperr.Authorization("you do not have access to this load")
	}

	ok, err := s.repo.CancelLoad(ctx, loadID, shipperID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Conflict("only pending loads can be cancelled")
	}
	return nil
}

func canViewLoad(user *model.AuthUser, load *model.Load) bool {
	switch user.UserType {
	case model.UserTypeAdmin:
		return true
	case model.UserTypeShipper:
		return load.ShipperID == user.ID
	case model.UserTypeDriver:
		if load.DriverID != nil && *load.DriverID == user.ID {
			return true
		}
		// Unassigned pending loads are browsable by any driver.
		return load.Status == model.LoadStatusPending && load.DriverID == nil
	}
	return false
}
