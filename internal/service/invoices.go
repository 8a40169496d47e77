package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/db"
	"github.com/meddispatch/backend/internal/model"
)

type invoicesRepo interface {
	GenerateInvoice(ctx context.Context, shipperID int64, number string, periodStart, periodEnd time.Time) (*model.InvoiceDetail, error)
	GetInvoice(ctx context.Context, invoiceID int64) (*model.Invoice, error)
	GetInvoiceLoads(ctx context.Context, invoiceID int64) ([]model.Load, error)
	ListInvoices(ctx context.Context, shipperID int64) ([]model.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, invoiceID int64, status model.InvoiceStatus) (bool, error)
	InsertNotification(ctx context.Context, userID int64, userType model.UserType, kind model.NotificationKind, body string) error
}

type InvoiceService struct {
	repo   invoicesRepo
	logger zerolog.Logger
}

func NewInvoiceService(repo invoicesRepo, logger zerolog.Logger) *InvoiceService {
	return &InvoiceService{repo: repo, logger: logger}
}

// Generate bills a shipper's delivered, uninvoiced loads for the period.
func (s *InvoiceService) Generate(ctx context.Context, req model.GenerateInvoiceRequest) (*model.InvoiceDetail, error) {
	if !req.PeriodEnd.After(req.PeriodStart) {
		return nil, apperr.Validation("invalid billing period", apperr.FieldError{
			Field:   "periodEnd",
			Message: "must be after periodStart",
		})
	}

	detail, err := s.repo.GenerateInvoice(ctx, req.ShipperID, uuid.NewString(), req.PeriodStart, req.PeriodEnd)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, apperr.Validation("no billable loads in the requested period")
	}

	body := fmt.Sprintf("Invoice %s for %d load(s) has been generated.", detail.Number, len(detail.Loads))
	if err := s.repo.InsertNotification(ctx, detail.ShipperID, model.UserTypeShipper, model.NotificationKindInvoice, body); err != nil {
		s.logger.Error().Err(err).Int64("invoiceId", detail.ID).Msg("failed to notify shipper of invoice")
	}

	return detail, nil
}

// Get returns an invoice with its loads, visible to the billed shipper or an
// admin.
func (s *InvoiceService) Get(ctx context.Context, user *model.AuthUser, invoiceID int64) (*model.InvoiceDetail, error) {
	invoice, err := s.repo.GetInvoice(ctx, invoiceID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, apperr.NotFound("invoice")
		}
		return nil, err
	}
	if user.UserType != model.UserTypeAdmin && invoice.ShipperID != user.ID {
		return nil, apperr.Authorization("you do not have access to this invoice")
	}

	loads, err := s.repo.GetInvoiceLoads(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return &model.InvoiceDetail{Invoice: *invoice, Loads: loads}, nil
}

// List returns all invoices to admins and own invoices to shippers.
func (s *InvoiceService) List(ctx context.Context, user *model.AuthUser) ([]model.Invoice, error) {
	if user.UserType == model.UserTypeAdmin {
		return s.repo.ListInvoices(ctx, 0)
	}
	return s.repo.ListInvoices(ctx, user.ID)
}

func (s *InvoiceService) UpdateStatus(ctx context.Context, invoiceID int64, status model.InvoiceStatus) (*model.Invoice, error) {
	ok, err := s.repo.UpdateInvoiceStatus(ctx, invoiceID, status)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.NotFound("invoice")
	}
	return s.repo.GetInvoice(ctx, invoiceID)
}
