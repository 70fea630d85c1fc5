package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-crm/meridian/internal/shared"
)

// Service wraps authentication business rules.
type Service struct {
	repo   Repository
	tokens *TokenManager
}

// NewService constructs a new Service.
func NewService(repo Repository, tokens *TokenManager) *Service {
	return &Service{repo: repo, tokens: tokens}
}

// Authenticate validates email/password credentials and issues a bearer token.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, string, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, "", shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", shared.ErrInvalidCredentials
	}
	token, err := s.tokens.Issue(user.ID, time.Now().UTC())
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Register creates a company profile plus its first admin user and signs the
// caller in.
func (s *Service) Register(ctx context.Context, companyName, email, password string, fullName *string) (*User, string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("auth: hash password: %w", err)
	}
	user := User{
		ID:           uuid.New(),
		CompanyID:    uuid.New(),
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Role:         shared.RoleAdmin,
		IsActive:     true,
	}
	if err := s.repo.RegisterTenant(ctx, companyName, user); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, "", fmt.Errorf("%w: email already registered", shared.ErrConflict)
		}
		return nil, "", fmt.Errorf("auth: register tenant: %w", err)
	}
	token, err := s.tokens.Issue(user.ID, time.Now().UTC())
	if err != nil {
		return nil, "", err
	}
	return &user, token, nil
}

// Resolve turns a raw bearer credential into the acting identity. Missing or
// invalid tokens yield ErrUnauthenticated; deactivated users yield
// ErrAccountInactive. There is no anonymous path.
func (s *Service) Resolve(ctx context.Context, rawToken string) (shared.Identity, error) {
	userID, err := s.tokens.Verify(rawToken)
	if err != nil {
		return shared.Identity{}, err
	}
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.Identity{}, shared.ErrUnauthenticated
		}
		return shared.Identity{}, err
	}
	if !user.IsActive {
		return shared.Identity{}, shared.ErrAccountInactive
	}
	return shared.Identity{
		UserID:    user.ID,
		CompanyID: user.CompanyID,
		Role:      user.Role,
		IsActive:  user.IsActive,
	}, nil
}
