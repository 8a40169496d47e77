package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/model"
)

type fakeComplianceRepo struct {
	expiring      []model.Driver
	recent        map[int64]bool
	notifications []model.Notification
}

func (f *fakeComplianceRepo) ListExpiringRegistrations(_ context.Context, _ time.Time) ([]model.Driver, error) {
	return f.expiring, nil
}

func (f *fakeComplianceRepo) HasRecentNotification(_ context.Context, userID int64, _ model.NotificationKind, _ int) (bool, error) {
	return f.recent[userID], nil
}

func (f *fakeComplianceRepo) InsertNotification(_ context.Context, userID int64, userType model.UserType, kind model.NotificationKind, body string) error {
	f.notifications = append(f.notifications, model.Notification{
		UserID: userID, UserType: userType, Kind: kind, Body: body,
	})
	return nil
}

func TestScanRegistrationExpiry(t *testing.T) {
	soon := time.Now().AddDate(0, 0, 10)
	repo := &fakeComplianceRepo{
		expiring: []model.Driver{
			{UserID: 1, RegistrationExpiresAt: &soon},
			{UserID: 2, RegistrationExpiresAt: &soon},
			{UserID: 3, RegistrationExpiresAt: &soon},
		},
		recent: map[int64]bool{2: true}, // already reminded this week
	}
	svc := NewComplianceService(repo, 30, zerolog.Nop())

	scanned, notified, err := svc.ScanRegistrationExpiry(context.Background())
	if err != nil {
		t.Fatalf("ScanRegistrationExpiry: %v", err)
	}
	if scanned != 3 {
		t.Fatalf("expected 3 scanned, got %d", scanned)
	}
	if notified != 2 {
		t.Fatalf("expected 2 notified (one deduped), got %d", notified)
	}
	for _, n := range repo.notifications {
		if n.Kind != model.NotificationKindRegistrationExpiry {
			t.Fatalf("unexpected notification kind: %s", n.Kind)
		}
		if n.UserID == 2 {
			t.Fatal("driver 2 was reminded recently and must be skipped")
		}
	}
}

func TestScanRegistrationExpiryEmpty(t *testing.T) {
	svc := NewComplianceService(&fakeComplianceRepo{}, 30, zerolog.Nop())
	scanned, notified, err := svc.ScanRegistrationExpiry(context.Background())
	if err != nil {
		t.Fatalf("ScanRegistrationExpiry: %v", err)
	}
	if scanned != 0 || notified != 0 {
		t.Fatalf("expected zero work, got scanned=%d notified=%d", scanned, notified)
	}
}
