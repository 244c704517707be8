package services

import (
	"context"
	"time"

	"github.com/wellness-tracker/apiserver/internal/store"
	"github.com/wellness-tracker/apiserver/types"
)

// maxListLimit caps how many logs a single listing returns.
const maxListLimit = 100

// LogRepository defines persistence operations for wellness logs.
type LogRepository interface {
	Create(ctx context.Context, log types.WellnessLog) (types.WellnessLog, error)
	List(ctx context.Context, userID string, filter store.LogFilter, limit int) ([]types.WellnessLog, error)
	Update(ctx context.Context, userID string, log types.WellnessLog) (types.WellnessLog, error)
	Delete(ctx context.Context, userID, id string) error
}

// LogService encapsulates wellness log use-cases.
type LogService struct {
	repo LogRepository
}

func NewLogService(repo LogRepository) *LogService {
	return &LogService{repo: repo}
}

// Create persists a new log for the owner. The date is always stamped to
// the current time on creation.
func (s *LogService) Create(ctx context.Context, log types.WellnessLog) (types.WellnessLog, error) {
	log.Date = time.Now()
	return s.repo.Create(ctx, log)
}

func (s *LogService) List(ctx context.Context, userID string, filter store.LogFilter) ([]types.WellnessLog, error) {
	return s.repo.List(ctx, userID, filter, maxListLimit)
}

func (s *LogService) Update(ctx context.Context, userID string, log types.WellnessLog) (types.WellnessLog, error) {
	return s.repo.Update(ctx, userID, log)
}

func (s *LogService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.Delete(ctx, userID, id)
}
