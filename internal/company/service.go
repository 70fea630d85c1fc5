package company

import (
	"context"

	"github.com/meridian-crm/meridian/internal/shared"
)

// Service implements company profile management.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Get returns the actor's own company profile.
func (s *Service) Get(ctx context.Context, identity shared.Identity) (*Profile, error) {
	return s.repo.Get(ctx, identity.CompanyID)
}

// Update patches the actor's own company profile. Admin only.
func (s *Service) Update(ctx context.Context, identity shared.Identity, req UpdateProfileRequest) (*Profile, error) {
	if !identity.IsAdmin() {
		return nil, shared.ErrForbidden
	}
	if err := shared.Validate(req); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Address != nil {
		updates["address"] = *req.Address
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.Email != nil {
		updates["email"] = *req.Email
	}
	if req.Website != nil {
		updates["website"] = *req.Website
	}
	if len(updates) > 0 {
		if err := s.repo.Update(ctx, identity.CompanyID, updates); err != nil {
			return nil, err
		}
	}
	return s.repo.Get(ctx, identity.CompanyID)
}
