package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"

	"github.com/meddispatch/backend/internal/cache"
	"github.com/meddispatch/backend/internal/model"
)

const statsCacheKey = "admin:stats"
const statsCacheTTL = 60 * time.Second

type statsRepo interface {
	GetDashboardStats(ctx context.Context) (*model.StatsResponse, error)
}

// AdminService serves the dashboard, caching the aggregate counts briefly to
// keep repeated dashboard refreshes off the database.
type AdminService struct {
	repo   statsRepo
	cache  cache.Store
	logger zerolog.Logger
}

func NewAdminService(repo statsRepo, store cache.Store, logger zerolog.Logger) *AdminService {
	return &AdminService{repo: repo, cache: store, logger: logger}
}

func (s *AdminService) DashboardStats(ctx context.Context) (*model.StatsResponse, error) {
	if cached, ok, err := s.cache.Get(ctx, statsCacheKey); err == nil && ok {
		var stats model.StatsResponse
		if err := json.Unmarshal([]byte(cached), &stats); err == nil {
			return &stats, nil
		}
	}

	stats, err := s.repo.GetDashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	stats.GeneratedAt = time.Now().UTC()

	if encoded, err := json.Marshal(stats); err == nil {
		if err := s.cache.Set(ctx, statsCacheKey, string(encoded), statsCacheTTL); err != nil {
			s.logger.Warn().Err(err).Msg("failed to cache dashboard stats")
		}
	}
	return stats, nil
}
