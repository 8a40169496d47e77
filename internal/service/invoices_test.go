package service

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/model"
)

type fakeInvoicesRepo struct {
	loads         []model.Load
	invoices      map[int64]*model.Invoice
	invoiceLoads  map[int64][]model.Load
	nextID        int64
	notifications []model.Notification
}

func newFakeInvoicesRepo() *fakeInvoicesRepo {
	return &fakeInvoicesRepo{
		invoices:     make(map[int64]*model.Invoice),
		invoiceLoads: make(map[int64][]model.Load),
	}
}

// GenerateInvoice mirrors the transactional query: only delivered, uninvoiced
// loads delivered inside the period are billed, and no invoice row is written
// when nothing qualifies.
func (f *fakeInvoicesRepo) GenerateInvoice(_ context.Context, shipperID int64, number string, periodStart, periodEnd time.Time) (*model.InvoiceDetail, error) {
	var billed []model.Load
	var total int64
	for i := range f.loads {
		l := &f.loads[i]
		if l.ShipperID != shipperID || l.Status != model.LoadStatusDelivered || l.InvoiceID != nil {
			continue
		}
		if l.DeliveredAt == nil || l.DeliveredAt.Before(periodStart) || l.DeliveredAt.After(periodEnd) {
			continue
		}
		billed = append(billed, *l)
		total += l.PriceCents
	}
	if len(billed) == 0 {
		return nil, nil
	}

	f.nextID++
	inv := &model.Invoice{
		ID:          f.nextID,
		Number:      number,
		ShipperID:   shipperID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		TotalCents:  total,
		Status:      model.InvoiceStatusDraft,
		CreatedAt:   time.Now(),
	}
	f.invoices[inv.ID] = inv
	f.invoiceLoads[inv.ID] = billed
	for i := range f.loads {
		for _, b := range billed {
			if f.loads[i].ID == b.ID {
				id := inv.ID
				f.loads[i].InvoiceID = &id
			}
		}
	}
	return &model.InvoiceDetail{Invoice: *inv, Loads: billed}, nil
}

func (f *fakeInvoicesRepo) GetInvoice(_ context.Context, invoiceID int64) (*model.Invoice, error) {
	if inv, ok := f.invoices[invoiceID]; ok {
		return inv, nil
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeInvoicesRepo) GetInvoiceLoads(_ context.Context, invoiceID int64) ([]model.Load, error) {
	return f.invoiceLoads[invoiceID], nil
}

func (f *fakeInvoicesRepo) ListInvoices(_ context.Context, shipperID int64) ([]model.Invoice, error) {
	var out []model.Invoice
	for _, inv := range f.invoices {
		if shipperID == 0 || inv.ShipperID == shipperID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (f *fakeInvoicesRepo) UpdateInvoiceStatus(_ context.Context, invoiceID int64, status model.InvoiceStatus) (bool, error) {
	inv, ok := f.invoices[invoiceID]
	if !ok {
		return false, nil
	}
	inv.Status = status
	return true, nil
}

func (f *fakeInvoicesRepo) InsertNotification(_ context.Context, userID int64, userType model.UserType, kind model.NotificationKind, body string) error {
	f.notifications = append(f.notifications, model.Notification{
		UserID: userID, UserType: userType, Kind: kind, Body: body,
	})
	return nil
}

func deliveredLoad(id, shipperID, priceCents int64, deliveredAt time.Time) model.Load {
	return model.Load{
		ID:          id,
		ShipperID:   shipperID,
		Status:      model.LoadStatusDelivered,
		PriceCents:  priceCents,
		DeliveredAt: &deliveredAt,
	}
}

func TestGenerateRejectsInvertedPeriod(t *testing.T) {
	svc := NewInvoiceService(newFakeInvoicesRepo(), zerolog.Nop())

	now := time.Now()
	_, err := svc.Generate(context.Background(), model.GenerateInvoiceRequest{
		ShipperID:   7,
		PeriodStart: now,
		PeriodEnd:   now.Add(-24 * time.Hour),
	})
	ae := apperr.From(err)
	if ae.Kind != apperr.KindValidation {
		t.Fatalf("inverted period must fail validation, got %v", err)
	}
	if len(ae.Fields) != 1 || ae.Fields[0].Field != "periodEnd" {
		t.Fatalf("expected a periodEnd field error, got %+v", ae.Fields)
	}
}

func TestGenerateWithNoBillableLoads(t *testing.T) {
	repo := newFakeInvoicesRepo()
	svc := NewInvoiceService(repo, zerolog.Nop())

	now := time.Now()
	_, err := svc.Generate(context.Background(), model.GenerateInvoiceRequest{
		ShipperID:   7,
		PeriodStart: now.Add(-30 * 24 * time.Hour),
		PeriodEnd:   now,
	})
	if apperr.From(err).Kind != apperr.KindValidation {
		t.Fatalf("empty period must fail validation, got %v", err)
	}
	if len(repo.invoices) != 0 {
		t.Fatal("no invoice row should be written for an empty period")
	}
}

func TestGenerateBillsOnlyEligibleLoads(t *testing.T) {
	repo := newFakeInvoicesRepo()
	svc := NewInvoiceService(repo, zerolog.Nop())

	now := time.Now()
	inPeriod := now.Add(-5 * 24 * time.Hour)
	outOfPeriod := now.Add(-60 * 24 * time.Hour)

	repo.loads = []model.Load{
		deliveredLoad(1, 7, 10_000, inPeriod),
		deliveredLoad(2, 7, 25_000, inPeriod),
		deliveredLoad(3, 7, 40_000, outOfPeriod),
		deliveredLoad(4, 99, 80_000, inPeriod), // other shipper
	}
	repo.loads = append(repo.loads, model.Load{
		ID: 5, ShipperID: 7, Status: model.LoadStatusInTransit, PriceCents: 15_000,
	})
	alreadyBilled := deliveredLoad(6, 7, 20_000, inPeriod)
	existing := int64(42)
	alreadyBilled.InvoiceID = &existing
	repo.loads = append(repo.loads, alreadyBilled)

	detail, err := svc.Generate(context.Background(), model.GenerateInvoiceRequest{
		ShipperID:   7,
		PeriodStart: now.Add(-30 * 24 * time.Hour),
		PeriodEnd:   now,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if len(detail.Loads) != 2 {
		t.Fatalf("expected loads 1 and 2 billed, got %d loads", len(detail.Loads))
	}
	if detail.TotalCents != 35_000 {
		t.Fatalf("expected total 35000, got %d", detail.TotalCents)
	}
	if detail.Status != model.InvoiceStatusDraft {
		t.Fatalf("new invoice should be DRAFT, got %s", detail.Status)
	}

	// The billed shipper is notified.
	if len(repo.notifications) != 1 {
		t.Fatalf("expected one notification, got %d", len(repo.notifications))
	}
	n := repo.notifications[0]
	if n.UserID != 7 || n.Kind != model.NotificationKindInvoice {
		t.Fatalf("unexpected notification: %+v", n)
	}
}

func TestGetEnforcesInvoiceOwnership(t *testing.T) {
	repo := newFakeInvoicesRepo()
	svc := NewInvoiceService(repo, zerolog.Nop())

	now := time.Now()
	repo.loads = []model.Load{deliveredLoad(1, 7, 10_000, now.Add(-24*time.Hour))}
	detail, err := svc.Generate(context.Background(), model.GenerateInvoiceRequest{
		ShipperID:   7,
		PeriodStart: now.Add(-48 * time.Hour),
		PeriodEnd:   now,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	owner := &model.AuthUser{ID: 7, UserType: model.UserTypeShipper}
	other := &model.AuthUser{ID: 8, UserType: model.UserTypeShipper}
	admin := &model.AuthUser{ID: 1, UserType: model.UserTypeAdmin}

	if _, err := svc.Get(context.Background(), owner, detail.ID); err != nil {
		t.Fatalf("owning shipper must see the invoice, got %v", err)
	}
	if _, err := svc.Get(context.Background(), admin, detail.ID); err != nil {
		t.Fatalf("admin must see the invoice, got %v", err)
	}
	if _, err := svc.Get(context.Background(), other, detail.ID); apperr.From(err).Kind != apperr.KindAuthorization {
		t.Fatalf("another shipper must be rejected, got %v", err)
	}
	if _, err := svc.Get(context.Background(), admin, 999); apperr.From(err).Kind != apperr.KindNotFound {
		t.Fatalf("missing invoice must be not-found, got %v", err)
	}
}

func TestUpdateStatusUnknownInvoice(t *testing.T) {
	svc := NewInvoiceService(newFakeInvoicesRepo(), zerolog.Nop())

	_, err := svc.UpdateStatus(context.Background(), 999, model.InvoiceStatusPaid)
	if apperr.From(err).Kind != apperr.KindNotFound {
		t.Fatalf("unknown invoice must be not-found, got %v", err)
	}
}
