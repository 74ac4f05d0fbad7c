package services

import (
	"context"
	"fmt"
	"time"

	"github.com/vladimiradmaev/pressure-helper/internal/database"
	"github.com/vladimiradmaev/pressure-helper/internal/repository"
)

type UserService struct {
	users *repository.UserRepository
	now   func() time.Time
}

func NewUserService(users *repository.UserRepository) *UserService {
	return &UserService{users: users, now: time.Now}
}

// RegisterUser records the telegram user on first contact and refreshes their last-seen time
func (s *UserService) RegisterUser(ctx context.Context, telegramID int64, username, firstName, lastName string) (*database.User, error) {
	user, err := s.users.Touch(ctx, telegramID, username, firstName, lastName, s.now())
	if err != nil {
		return nil, fmt.Errorf("failed to register user: %w", err)
	}
	return user, nil
}

func (s *UserService) GetUserByTelegramID(ctx context.Context, telegramID int64) (*database.User, error) {
	user, err := s.users.GetUserByTelegramID(ctx, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
