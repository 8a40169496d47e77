package service

import (
	"context"

	"github.com/meddispatch/backend/internal/apperr"
	"github.com/meddispatch/backend/internal/model"
)

type documentsRepo interface {
	InsertDocument(ctx context.Context, driverID int64, req model.CreateDocumentRequest) (*model.Document, error)
	ListDriverDocuments(ctx context.Context, driverID int64, scope model.FleetScope) ([]model.Document, error)
	DeleteDocument(ctx context.Context, documentID, ownerID int64) (bool, error)
}

type DocumentService struct {
	repo documentsRepo
}

func NewDocumentService(repo documentsRepo) *DocumentService {
	return &DocumentService{repo: repo}
}

// Create uploads compliance document metadata. Drivers file their own
// documents; admins may file for any driver.
func (s *DocumentService) Create(ctx context.Context, user *model.AuthUser, driverID int64, req model.CreateDocumentRequest) (*model.Document, error) {
	if user.UserType != model.UserTypeAdmin && user.ID != driverID {
		return nil, apperr.Authorization("you can only manage your own documents")
	}
	return s.repo.InsertDocument(ctx, driverID, req)
}

// List returns a driver's documents under fleet scoping.
func (s *DocumentService) List(ctx context.Context, user *model.AuthUser, driverID int64) ([]model.Document, error) {
	return s.repo.ListDriverDocuments(ctx, driverID, model.ScopeFor(user))
}

func (s *DocumentService) Delete(ctx context.Context, user *model.AuthUser, documentID int64) error {
	ownerID := user.ID
	if user.UserType == model.UserTypeAdmin {
		ownerID = 0
	}
	ok, err := s.repo.DeleteDocument(ctx, documentID, ownerID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.NotFound("document")
	}
	return nil
}
