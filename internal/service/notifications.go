package service

import (
	"context"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/model"
)

type notificationsRepo interface {
	ListNotifications(ctx context.Context, userID int64, userType model.UserType) ([]model.Notification, error)
	MarkNotificationRead(ctx context.Context, notificationID, userID int64) (bool, error)
}

type NotificationService struct {
	repo notificationsRepo
}

func NewNotificationService(repo notificationsRepo) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) List(ctx context.Context, user *model.AuthUser) ([]model.Notification, error) {
	return s.repo.ListNotifications(ctx, user.ID, user.UserType)
}

// MarkRead flags the caller's own notification; someone else's notification
// is indistinguishable from a missing one.
func (s *NotificationService) MarkRead(ctx context.Context, user *model.AuthUser, notificationID int64) error {
	ok, err := s.repo.MarkNotificationRead(ctx, notificationID, user.ID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("notification")
	}
	return nil
}
