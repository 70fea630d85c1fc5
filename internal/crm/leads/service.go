package leads

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/meridian-crm/meridian/internal/shared"
)

// Service implements lead management on top of the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, identity shared.Identity, req CreateLeadRequest) (*Lead, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}

	lead := &Lead{
		ID:            uuid.New(),
		CompanyID:     identity.CompanyID,
		BusinessName:  req.BusinessName,
		ContactPerson: req.ContactPerson,
		Email:         req.Email,
		Phone:         req.Phone,
		Country:       req.Country,
		State:         req.State,
		City:          req.City,
		Pincode:       req.Pincode,
		Stage:         DefaultStage,
		Lat:           req.Lat,
		Lng:           req.Lng,
		LeadSource:    req.LeadSource,
		NextAction:    req.NextAction,
		Notes:         req.Notes,
		IsActive:      true,
		CreatedBy:     &identity.UserID,
	}
	if req.Stage != nil && *req.Stage != "" {
		lead.Stage = *req.Stage
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, fmt.Errorf("%w: lead with this email or phone already exists", shared.ErrConflict)
		}
		return nil, err
	}
	return lead, nil
}

func (s *Service) Get(ctx context.Context, identity shared.Identity, id uuid.UUID) (*Lead, error) {
	scope := shared.ScopeFor(identity)
	lead, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := shared.Authorize(scope, lead); err != nil {
		return nil, err
	}
	return lead, nil
}

func (s *Service) List(ctx context.Context, identity shared.Identity, filter ListFilter, limit, offset int) ([]Lead, error) {
	return s.repo.List(ctx, shared.ScopeFor(identity), filter, shared.NewPage(limit, offset))
}

func (s *Service) Update(ctx context.Context, identity shared.Identity, id uuid.UUID, req UpdateLeadRequest) (*Lead, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}

	scope := shared.ScopeFor(identity)
	current, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := shared.Authorize(scope, current); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	setStr := func(col string, v *string, dst **string) {
		if v != nil {
			updates[col] = *v
			*dst = v
		}
	}
	if req.BusinessName != nil {
		updates["business_name"] = *req.BusinessName
		current.BusinessName = *req.BusinessName
	}
	setStr("contact_person", req.ContactPerson, &current.ContactPerson)
	setStr("email", req.Email, &current.Email)
	setStr("phone", req.Phone, &current.Phone)
	setStr("country", req.Country, &current.Country)
	setStr("state", req.State, &current.State)
	setStr("city", req.City, &current.City)
	setStr("pincode", req.Pincode, &current.Pincode)
	setStr("lead_source", req.LeadSource, &current.LeadSource)
	setStr("next_action", req.NextAction, &current.NextAction)
	setStr("notes", req.Notes, &current.Notes)
	if req.Stage != nil {
		updates["stage"] = *req.Stage
		current.Stage = *req.Stage
	}
	if req.Lat != nil {
		updates["lat"] = *req.Lat
		current.Lat = req.Lat
	}
	if req.Lng != nil {
		updates["lng"] = *req.Lng
		current.Lng = req.Lng
	}
	if req.IsActive != nil {
		updates["is_active"] = *req.IsActive
		current.IsActive = *req.IsActive
	}
	if len(updates) == 0 {
		return current, nil
	}

	// Keep the folded search haystack in step with the searchable fields.
	if req.BusinessName != nil || req.ContactPerson != nil || req.Email != nil {
		updates["search_key"] = searchKeyFor(current)
	}

	if err := s.repo.Update(ctx, scope, id, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, scope, id)
}

func (s *Service) Delete(ctx context.Context, identity shared.Identity, id uuid.UUID) error {
	scope := shared.ScopeFor(identity)
	current, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return err
	}
	if err := shared.Authorize(scope, current); err != nil {
		return err
	}
	return s.repo.Delete(ctx, scope, id)
}
