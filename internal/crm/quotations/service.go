package quotations

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meridian-crm/meridian/internal/shared"
)

// Service implements quotation management on top of the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, identity shared.Identity, req CreateQuotationRequest) (*Quotation, error) {
	if err := shared.Validate(req); err != nil {
		return nil, err
	}

	scope := shared.ScopeFor(identity)
	ok, err := s.repo.LeadExists(ctx, scope, req.LeadID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: lead", shared.ErrNotFound)
	}

	q := &Quotation{
		ID:          uuid.New(),
		LeadID:      req.LeadID,
		CompanyID:   identity.CompanyID,
		QuoteNumber: req.QuoteNumber,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      StatusDraft,
		ValidUntil:  req.ValidUntil,
		Notes:       req.Notes,
		CreatedBy:   identity.UserID,
	}
	if err := s.repo.Create(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) Get(ctx context.Context, identity shared.Identity, id uuid.UUID) (*Quotation, error) {
	scope := shared.ScopeFor(identity)
	q, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := shared.Authorize(scope, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *Service) List(ctx context.Context, identity shared.Identity, filter ListFilter, limit, offset int) ([]Quotation, error) {
	return s.repo.List(ctx, shared.ScopeFor(identity), filter, shared.NewPage(limit, offset))
}

func (s *Service) Update(ctx context.Context, identity shared.Identity, id uuid.UUID, req UpdateQuotationRequest) (*Quotation, error) {
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
	if req.Amount != nil {
		updates["amount"] = *req.Amount
	}
	if req.Currency != nil {
		updates["currency"] = *req.Currency
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.ValidUntil != nil {
		updates["valid_until"] = *req.ValidUntil
	}
	if req.Notes != nil {
		updates["notes"] = *req.Notes
	}
	if len(updates) == 0 {
		return current, nil
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
