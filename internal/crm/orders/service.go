package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meridian-crm/meridian/internal/shared"
)

// Service implements order management on top of the repository.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, identity shared.Identity, req CreateOrderRequest) (*Order, error) {
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
	if req.QuotationID != nil {
		ok, err := s.repo.QuotationBelongsTo(ctx, scope, *req.QuotationID, req.LeadID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: quotation does not belong to this lead", shared.ErrValidation)
		}
	}

	o := &Order{
		ID:          uuid.New(),
		LeadID:      req.LeadID,
		CompanyID:   identity.CompanyID,
		QuotationID: req.QuotationID,
		OrderNumber: req.OrderNumber,
		Amount:      req.Amount,
		Currency:    req.Currency,
		Status:      StatusPending,
		Notes:       req.Notes,
		CreatedBy:   identity.UserID,
	}
	if err := s.repo.Create(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Get(ctx context.Context, identity shared.Identity, id uuid.UUID) (*Order, error) {
	scope := shared.ScopeFor(identity)
	o, err := s.repo.Get(ctx, scope, id)
	if err != nil {
		return nil, err
	}
	if err := shared.Authorize(scope, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) List(ctx context.Context, identity shared.Identity, filter ListFilter, limit, offset int) ([]Order, error) {
	return s.repo.List(ctx, shared.ScopeFor(identity), filter, shared.NewPage(limit, offset))
}

func (s *Service) Update(ctx context.Context, identity shared.Identity, id uuid.UUID, req UpdateOrderRequest) (*Order, error) {
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
