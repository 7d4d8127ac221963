package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/notelyhq/notely/internal/domain"
	"github.com/notelyhq/notely/internal/repository"
)

type UserService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*domain.UserSummary, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	summary := user.Summary()
	return &summary, nil
}

// Search finds users by name or email substring, excluding the requester
// (used by the collaborator picker).
func (s *UserService) Search(ctx context.Context, requesterID uuid.UUID, query string) ([]domain.UserSummary, error) {
	users, err := s.userRepo.Search(ctx, query)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.UserSummary, 0, len(users))
	for _, u := range users {
		if u.ID == requesterID {
			continue
		}
		summaries = append(summaries, u.Summary())
	}
	return summaries, nil
}
