package users

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/storekeep/storekeep/internal/shared"
	"github.com/storekeep/storekeep/internal/textx"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, hubID int64) ([]User, error) {
	return s.repo.List(ctx, hubID)
}

func (s *Service) Get(ctx context.Context, hubID, id int64) (User, error) {
	return s.repo.Get(ctx, hubID, id)
}

func (s *Service) Create(ctx context.Context, hubID int64, req CreateUserRequest) (User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}
	u := User{
		HubID:        hubID,
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		FullName:     textx.CleanInline(req.FullName),
		PasswordHash: string(hash),
		Capabilities: req.Capabilities,
		IsActive:     true,
	}
	if u.FullName == "" {
		return User{}, fmt.Errorf("full name is required: %w", shared.ErrValidation)
	}
	return s.repo.Create(ctx, u)
}

func (s *Service) Update(ctx context.Context, hubID, id int64, req UpdateUserRequest) (User, error) {
	current, err := s.repo.Get(ctx, hubID, id)
	if err != nil {
		return User{}, err
	}
	if req.FullName != nil {
		current.FullName = textx.CleanInline(*req.FullName)
		if current.FullName == "" {
			return User{}, fmt.Errorf("full name is required: %w", shared.ErrValidation)
		}
	}
	if req.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, fmt.Errorf("hash password: %w", err)
		}
		current.PasswordHash = string(hash)
	}
	if req.Capabilities != nil {
		current.Capabilities = *req.Capabilities
	}
	if req.IsActive != nil {
		current.IsActive = *req.IsActive
	}
	return s.repo.Update(ctx, hubID, id, current)
}

func (s *Service) Delete(ctx context.Context, hubID, id int64) error {
	return s.repo.Delete(ctx, hubID, id)
}

// VerifyCredentials checks an email/password pair within a hub and returns
// the matching active user. Bad password and unknown email both come back
// as ErrUnauthorized.
func (s *Service) VerifyCredentials(ctx context.Context, hubID int64, email, password string) (User, error) {
	u, err := s.repo.GetByEmail(ctx, hubID, email)
	if err != nil {
		return User{}, fmt.Errorf("invalid credentials: %w", shared.ErrUnauthorized)
	}
	if !u.IsActive {
		return User{}, fmt.Errorf("account disabled: %w", shared.ErrUnauthorized)
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return User{}, fmt.Errorf("invalid credentials: %w", shared.ErrUnauthorized)
	}
	return u, nil
}
