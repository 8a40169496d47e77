package service

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/model"
)

type fakeDriversRepo struct {
	drivers map[int64]*model.Driver
	loads   map[int64]*model.Load
	ratings []model.DriverRating
}

func newFakeDriversRepo() *fakeDriversRepo {
	return &fakeDriversRepo{
		drivers: make(map[int64]*model.Driver),
		loads:   make(map[int64]*model.Load),
	}
}

func (f *fakeDriversRepo) GetDriverScoped(_ context.Context, driverID int64, scope model.FleetScope) (*model.Driver, error) {
	d, ok := f.drivers[driverID]
	if !ok || !scope.Allows(d) {
		return nil, pgx.ErrNoRows
	}
	return d, nil
}

func (f *fakeDriversRepo) ListDrivers(_ context.Context, scope model.FleetScope) ([]model.Driver, error) {
	var out []model.Driver
	for _, d := range f.drivers {
		if scope.Allows(d) {
			out = append(out, *d)
		}
	}
	return out, nil
}

func (f *fakeDriversRepo) UpdateDriver(_ context.Context, driverID int64, req model.UpdateDriverRequest) error {
	d, ok := f.drivers[driverID]
	if !ok {
		return pgx.ErrNoRows
	}
	if req.Name != nil {
		d.Name = *req.Name
	}
	if req.Phone != nil {
		d.Phone = *req.Phone
	}
	if req.FleetID != nil {
		d.FleetID = *req.FleetID
	}
	if req.FleetRole != nil {
		d.FleetRole = *req.FleetRole
	}
	return nil
}

func (f *fakeDriversRepo) ListDriverRatings(_ context.Context, driverID int64) ([]model.DriverRating, error) {
	var out []model.DriverRating
	for _, r := range f.ratings {
		if r.DriverID == driverID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeDriversRepo) InsertDriverRating(_ context.Context, driverID, shipperID, loadID int64, stars int, comment string) (*model.DriverRating, error) {
	for _, r := range f.ratings {
		if r.LoadID == loadID {
			return nil, &pgconn.PgError{Code: "23505"}
		}
	}
	rating := model.DriverRating{
		ID: int64(len(f.ratings) + 1), DriverID: driverID, ShipperID: shipperID,
		LoadID: loadID, Stars: stars, Comment: comment,
	}
	f.ratings = append(f.ratings, rating)
	return &rating, nil
}

func (f *fakeDriversRepo) GetLoad(_ context.Context, loadID int64) (*model.Load, error) {
	if l, ok := f.loads[loadID]; ok {
		return l, nil
	}
	return nil, pgx.ErrNoRows
}

func TestDriverListFleetVisibility(t *testing.T) {
	repo := newFakeDriversRepo()
	repo.drivers[1] = &model.Driver{UserID: 1, FleetID: "f1", FleetRole: model.FleetRoleOwner}
	repo.drivers[2] = &model.Driver{UserID: 2, FleetID: "f1", FleetRole: model.FleetRoleDriver}
	repo.drivers[3] = &model.Driver{UserID: 3, FleetRole: model.FleetRoleIndependent}
	svc := NewDriverService(repo)

	owner := &model.AuthUser{ID: 1, UserType: model.UserTypeDriver, FleetID: "f1", FleetRole: model.FleetRoleOwner}
	got, err := svc.List(context.Background(), owner)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("owner should see 2 fleet drivers, got %d", len(got))
	}

	independent := &model.AuthUser{ID: 3, UserType: model.UserTypeDriver, FleetRole: model.FleetRoleIndependent}
	got, err = svc.List(context.Background(), independent)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 1 || got[0].UserID != 3 {
		t.Fatalf("independent should see only themselves, got %+v", got)
	}

	admin := &model.AuthUser{ID: 99, UserType: model.UserTypeAdmin}
	got, err = svc.List(context.Background(), admin)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("admin should see all drivers, got %d", len(got))
	}
}

func TestDriverGetOutOfScopeIsNotFound(t *testing.T) {
	repo := newFakeDriversRepo()
	repo.drivers[1] = &model.Driver{UserID: 1, FleetRole: model.FleetRoleIndependent}
	repo.drivers[2] = &model.Driver{UserID: 2, FleetRole: model.FleetRoleIndependent}
	svc := NewDriverService(repo)

	caller := &model.AuthUser{ID: 1, UserType: model.UserTypeDriver, FleetRole: model.FleetRoleIndependent}
	_, err := svc.Get(context.Background(), caller, 2)
	if apperr.From(err).Kind != apperr.KindNotFound {
		t.Fatalf("out-of-scope driver must be indistinguishable from missing, got %v", err)
	}
}

func TestDriverUpdatePermissions(t *testing.T) {
	repo := newFakeDriversRepo()
	repo.drivers[1] = &model.Driver{UserID: 1, FleetRole: model.FleetRoleIndependent}
	svc := NewDriverService(repo)

	self := &model.AuthUser{ID: 1, UserType: model.UserTypeDriver, FleetRole: model.FleetRoleIndependent}
	other := &model.AuthUser{ID: 2, UserType: model.UserTypeDriver, FleetRole: model.FleetRoleIndependent}
	admin := &model.AuthUser{ID: 99, UserType: model.UserTypeAdmin}

	phone := "555-0100"
	if _, err := svc.Update(context.Background(), self, 1, model.UpdateDriverRequest{Phone: &phone}); err != nil {
		t.Fatalf("self update: %v", err)
	}

	if _, err := svc.Update(context.Background(), other, 1, model.UpdateDriverRequest{Phone: &phone}); apperr.From(err).Kind != apperr.KindAuthorization {
		t.Fatal("another driver must not edit the profile")
	}

	fleetID := "f1"
	if _, err := svc.Update(context.Background(), self, 1, model.UpdateDriverRequest{FleetID: &fleetID}); apperr.From(err).Kind != apperr.KindAuthorization {
		t.Fatal("fleet membership must be admin-only")
	}

	role := model.FleetRoleOwner
	updated, err := svc.Update(context.Background(), admin, 1, model.UpdateDriverRequest{FleetID: &fleetID, FleetRole: &role})
	if err != nil {
		t.Fatalf("admin fleet update: %v", err)
	}
	if updated.FleetID != "f1" || updated.FleetRole != model.FleetRoleOwner {
		t.Fatalf("fleet fields not applied: %+v", updated)
	}
}

func TestRateDriver(t *testing.T) {
	repo := newFakeDriversRepo()
	driverID := int64(7)
	repo.drivers[driverID] = &model.Driver{UserID: driverID, FleetRole: model.FleetRoleIndependent}
	repo.loads[1] = &model.Load{ID: 1, ShipperID: 1, DriverID: &driverID, Status: model.LoadStatusDelivered}
	repo.loads[2] = &model.Load{ID: 2, ShipperID: 1, DriverID: &driverID, Status: model.LoadStatusInTransit}
	repo.loads[3] = &model.Load{ID: 3, ShipperID: 2, DriverID: &driverID, Status: model.LoadStatusDelivered}
	svc := NewDriverService(repo)

	rating, err := svc.Rate(context.Background(), 1, driverID, model.RateDriverRequest{LoadID: 1, Stars: 5})
	if err != nil {
		t.Fatalf("Rate: %v", err)
	}
	if rating.Stars != 5 {
		t.Fatalf("unexpected rating: %+v", rating)
	}

	// Same load rated twice.
	if _, err := svc.Rate(context.Background(), 1, driverID, model.RateDriverRequest{LoadID: 1, Stars: 4}); apperr.From(err).Kind != apperr.KindConflict {
		t.Fatalf("duplicate rating must conflict, got %v", err)
	}

	// Not yet delivered.
	if _, err := svc.Rate(context.Background(), 1, driverID, model.RateDriverRequest{LoadID: 2, Stars: 4}); apperr.From(err).Kind != apperr.KindValidation {
		t.Fatalf("undelivered load must be rejected, got %v", err)
	}

	// Someone else's load.
	if _, err := svc.Rate(context.Background(), 1, driverID, model.RateDriverRequest{LoadID: 3, Stars: 4}); apperr.From(err).Kind != apperr.KindAuthorization {
		t.Fatalf("another shipper's load must be rejected, got %v", err)
	}

	// Load carried by a different driver.
	if _, err := svc.Rate(context.Background(), 1, 999, model.RateDriverRequest{LoadID: 1, Stars: 4}); apperr.From(err).Kind != apperr.KindValidation {
		t.Fatalf("wrong driver must be rejected, got %v", err)
	}
}
