package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/model"
)

// Registration reminders are not repeated within this many days.
const reminderDedupeDays = 7

type complianceRepo interface {
	ListExpiringRegistrations(ctx context.Context, deadline time.Time) ([]model.Driver, error)
	HasRecentNotification(ctx context.Context, userID int64, kind model.NotificationKind, withinDays int) (bool, error)
	InsertNotification(ctx context.Context, userID int64, userType model.UserType, kind model.NotificationKind, body string) error
}

// ComplianceService runs the vehicle-registration expiry scan, either from
// the cron endpoint or the in-process scheduler.
type ComplianceService struct {
	repo             complianceRepo
	expiryWindowDays int
	logger           zerolog.Logger
}

func NewComplianceService(repo complianceRepo, expiryWindowDays int, logger zerolog.Logger) *ComplianceService {
	if expiryWindowDays <= 0 {
		expiryWindowDays = 30
	}
	return &ComplianceService{repo: repo, expiryWindowDays: expiryWindowDays, logger: logger}
}

// ScanRegistrationExpiry notifies drivers whose vehicle registration lapses
// within the configured window. Per-driver failures are logged and skipped so
// one bad row does not abort the batch.
func (s *ComplianceService) ScanRegistrationExpiry(ctx context.Context) (scanned, notified int, err error) {
	deadline := time.Now().AddDate(0, 0, s.expiryWindowDays)
	drivers, err := s.repo.ListExpiringRegistrations(ctx, deadline)
	if err != nil {
		return 0, 0, err
	}

	for _, driver := range drivers {
		scanned++

		recent, err := s.repo.HasRecentNotification(ctx, driver.UserID, model.NotificationKindRegistrationExpiry, reminderDedupeDays)
		if err != nil {
			s.logger.Error().Err(err).Int64("driverId", driver.UserID).Msg("reminder dedupe check failed")
			continue
		}
		if recent {
			continue
		}

		body := fmt.Sprintf(
			"Your vehicle registration expires on %s. Please renew it and upload the new registration document.",
			driver.RegistrationExpiresAt.Format("2006-01-02"),
		)
		if err := s.repo.InsertNotification(ctx, driver.UserID, model.UserTypeDriver, model.NotificationKindRegistrationExpiry, body); err != nil {
			s.logger.Error().Err(err).Int64("driverId", driver.UserID).Msg("failed to insert expiry reminder")
			continue
		}
		notified++
	}

	s.logger.Info().Int("scanned", scanned).Int("notified", notified).Msg("registration expiry scan complete")
	return scanned, notified, nil
}
