package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"storefront/internal/models"
	"storefront/internal/repositories"
)

// UserService implements the admin user operations.
type UserService struct {
	userRepo repositories.UserRepository
}

// NewUserService creates a new UserService.
func NewUserService(userRepo repositories.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// UserUpdate is a partial update of a user; nil fields are left unchanged.
type UserUpdate struct {
	Name  *string
	Email *string
	Role  *string
}

func (s *UserService) List(ctx context.Context) ([]models.User, error) {
	return s.userRepo.List(ctx)
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// Create adds a user with the given role; an empty role means customer.
func (s *UserService) Create(ctx context.Context, name, email, password, role string) (*models.User, error) {
	r := models.RoleCustomer
	if role != "" {
		parsed, err := models.ParseRole(role)
		if err != nil {
			return nil, err
		}
		r = parsed
	}

	hashed, err := hashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:     strings.TrimSpace(name),
		Email:    models.NormalizeEmail(email),
		Password: hashed,
		Role:     r,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	log.Info().Str("user_id", user.ID).Str("role", string(user.Role)).Msg("user created by admin")
	return user, nil
}

func (s *UserService) Update(ctx context.Context, id string, upd UserUpdate) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Role != nil {
		role, err := models.ParseRole(*upd.Role)
		if err != nil {
			return nil, err
		}
		user.Role = role
	}
	if upd.Name != nil {
		user.Name = strings.TrimSpace(*upd.Name)
	}
	if upd.Email != nil {
		user.Email = models.NormalizeEmail(*upd.Email)
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", id, err)
	}
	return user, nil
}

func (s *UserService) Delete(ctx context.Context, id string) error {
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("user_id", id).Msg("user deleted")
	return nil
}
