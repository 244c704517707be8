package services

import (
	"context"
	"encoding/json"

	"github.com/wellness-tracker/apiserver/types"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id string) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	GetReminderPreferences(ctx context.Context, userID string) (json.RawMessage, error)
	SetReminderPreferences(ctx context.Context, userID string, prefs json.RawMessage) (json.RawMessage, error)
}

// UserService encapsulates user use-cases.
type UserService struct {
	repo UserRepository
}

func NewUserService(repo UserRepository) *UserService {
	return &UserService{repo: repo}
}

func (s *UserService) GetByID(ctx context.Context, id string) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, email)
}

func (s *UserService) Create(ctx context.Context, user types.User) (types.User, error) {
	return s.repo.Create(ctx, user)
}

func (s *UserService) GetReminderPreferences(ctx context.Context, userID string) (json.RawMessage, error) {
	return s.repo.GetReminderPreferences(ctx, userID)
}

func (s *UserService) SetReminderPreferences(ctx context.Context, userID string, prefs json.RawMessage) (json.RawMessage, error) {
	return s.repo.SetReminderPreferences(ctx, userID, prefs)
}
