package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/db"
	"github.com/meddispatch/backend/internal/model"
)

type facilitiesRepo interface {
	CreateFacility(ctx context.Context, req model.CreateFacilityRequest, lat, lon *float64) (*model.Facility, error)
	GetFacility(ctx context.Context, facilityID int64) (*model.Facility, error)
	ListFacilities(ctx context.Context) ([]model.Facility, error)
	UpdateFacility(ctx context.Context, facilityID int64, req model.UpdateFacilityRequest) (bool, error)
	SetFacilityCoordinates(ctx context.Context, facilityID int64, lat, lon float64) error
	DeleteFacility(ctx context.Context, facilityID int64) (bool, error)
}

type addressResolver interface {
	Resolve(ctx context.Context, address string) (float64, float64, error)
}

type FacilityService struct {
	repo     facilitiesRepo
	geocoder addressResolver
	logger   zerolog.Logger
}

func NewFacilityService(repo facilitiesRepo, geocoder addressResolver, logger zerolog.Logger) *FacilityService {
	return &FacilityService{repo: repo, geocoder: geocoder, logger: logger}
}

// Create stores a facility, geocoding its address. A geocoder outage is not
// fatal; the facility is saved without coordinates.
func (s *FacilityService) Create(ctx context.Context, req model.CreateFacilityRequest) (*model.Facility, error) {
	var lat, lon *float64
	resolvedLat, resolvedLon, err := s.geocoder.Resolve(ctx, fullAddress(req.Address, req.City, req.State, req.Zip))
	if err != nil {
		s.logger.Warn().Err(err).Str("address", req.Address).Msg("geocoding failed, storing facility without coordinates")
	} else {
		lat, lon = &resolvedLat, &resolvedLon
	}

	return s.repo.CreateFacility(ctx, req, lat, lon)
}

func (s *FacilityService) Get(ctx context.Context, facilityID int64) (*model.Facility, error) {
	facility, err := s.repo.GetFacility(ctx, facilityID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("facility")
		}
		return nil, err
	}
	return facility, nil
}

func (s *FacilityService) List(ctx context.Context) ([]model.Facility, error) {
	return s.repo.ListFacilities(ctx)
}

// Update edits a facility and re-geocodes when the address changed.
func (s *FacilityService) Update(ctx context.Context, facilityID int64, req model.UpdateFacilityRequest) (*model.Facility, error) {
	ok, err := s.repo.UpdateFacility(ctx, facilityID, req)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("facility")
	}

	if req.Address != nil || req.City != nil || req.State != nil || req.Zip != nil {
		facility, err := s.repo.GetFacility(ctx, facilityID)
		if err != nil {
			return nil, err
		}
		lat, lon, err := s.geocoder.Resolve(ctx, fullAddress(facility.Address, facility.City, facility.State, facility.Zip))
		if err != nil {
			s.logger.Warn().Err(err).Int64("facilityId", facilityID).Msg("re-geocoding failed after address change")
		} else if err := s.repo.SetFacilityCoordinates(ctx, facilityID, lat, lon); err != nil {
			return nil, err
		}
	}

	return s.repo.GetFacility(ctx, facilityID)
}

func (s *FacilityService) Delete(ctx context.Context, facilityID int64) error {
	ok, err := s.repo.DeleteFacility(ctx, facilityID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("facility")
	}
	return nil
}

func fullAddress(address, city, state, zip string) string {
	out := fmt.Sprintf("%s, %s, %s", address, city, state)
	if zip != "" {
		out += " " + zip
	}
	return out
}
