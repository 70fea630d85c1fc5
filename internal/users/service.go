package users

import (
	"context"

	"github.com/google/uuid"

	"github.com/meridian-crm/meridian/internal/shared"
)

// Service implements tenant member lookups.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// List returns the tenant's members. Non-admins may not enumerate the roster.
func (s *Service) List(ctx context.Context, identity shared.Identity, limit, offset int) ([]User, error) {
	if !identity.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	return s.repo.List(ctx, identity.CompanyID, shared.NewPage(limit, offset))
}

// Get returns one member. Non-admins may only fetch themselves.
func (s *Service) Get(ctx context.Context, identity shared.Identity, id uuid.UUID) (*User, error) {
	if !identity.IsAdmin() && identity.UserID != id {
		return nil, shared.ErrForbidden
	}
	return s.repo.Get(ctx, identity.CompanyID, id)
}
