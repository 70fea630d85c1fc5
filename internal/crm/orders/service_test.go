package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian/internal/shared"
)

type mockRepository struct {
	orders     map[uuid.UUID]*Order
	leads      map[uuid.UUID]uuid.UUID    // lead id -> company id
	quotations map[uuid.UUID][2]uuid.UUID // quotation id -> (lead id, company id)
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		orders:     make(map[uuid.UUID]*Order),
		leads:      make(map[uuid.UUID]uuid.UUID),
		quotations: make(map[uuid.UUID][2]uuid.UUID),
	}
}

func (m *mockRepository) LeadExists(ctx context.Context, scope shared.Scope, leadID uuid.UUID) (bool, error) {
	company, ok := m.leads[leadID]
	return ok && company == scope.CompanyID, nil
}

func (m *mockRepository) QuotationBelongsTo(ctx context.Context, scope shared.Scope, quotationID, leadID uuid.UUID) (bool, error) {
	ref, ok := m.quotations[quotationID]
	return ok && ref[0] == leadID && ref[1] == scope.CompanyID, nil
}

func (m *mockRepository) Create(ctx context.Context, o *Order) error {
	o.CreatedAt = time.Now().UTC()
	stored := *o
	m.orders[o.ID] = &stored
	return nil
}

func (m *mockRepository) Get(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Order, error) {
	o, ok := m.orders[id]
	if !ok || o.CompanyID != scope.CompanyID {
		return nil, shared.ErrNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *mockRepository) List(ctx context.Context, scope shared.Scope, filter ListFilter, page shared.Page) ([]Order, error) {
	result := []Order{}
	for _, o := range m.orders {
		if o.CompanyID == scope.CompanyID {
			result = append(result, *o)
		}
	}
	return result, nil
}

func (m *mockRepository) Update(ctx context.Context, scope shared.Scope, id uuid.UUID, updates map[string]any) error {
	o, ok := m.orders[id]
	if !ok || o.CompanyID != scope.CompanyID {
		return shared.ErrNotFound
	}
	if v, ok := updates["status"]; ok {
		o.Status = v.(string)
	}
	return nil
}

func (m *mockRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	o, ok := m.orders[id]
	if !ok || o.CompanyID != scope.CompanyID {
		return shared.ErrNotFound
	}
	delete(m.orders, id)
	return nil
}

func adminIdentity() shared.Identity {
	return shared.Identity{UserID: uuid.New(), CompanyID: uuid.New(), Role: shared.RoleAdmin, IsActive: true}
}

func TestCreateOrderDefaults(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	identity := adminIdentity()
	leadID := uuid.New()
	repo.leads[leadID] = identity.CompanyID

	o, err := svc.Create(context.Background(), identity, CreateOrderRequest{
		LeadID:      leadID,
		OrderNumber: "SO-001",
		Amount:      1200.50,
		Currency:    "THB",
	})
	require.NoError(t, err)
	assert.Equal(t, StatusPending, o.Status)
	assert.Equal(t, identity.UserID, o.CreatedBy)
	assert.Nil(t, o.QuotationID)
}

func TestCreateOrderWithQuotation(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	identity := adminIdentity()
	leadID := uuid.New()
	repo.leads[leadID] = identity.CompanyID

	quoteID := uuid.New()
	repo.quotations[quoteID] = [2]uuid.UUID{leadID, identity.CompanyID}

	o, err := svc.Create(context.Background(), identity, CreateOrderRequest{
		LeadID:      leadID,
		QuotationID: &quoteID,
		OrderNumber: "SO-002",
		Amount:      900,
		Currency:    "THB",
	})
	require.NoError(t, err)
	require.NotNil(t, o.QuotationID)
	assert.Equal(t, quoteID, *o.QuotationID)
}

func TestCreateOrderRejectsForeignQuotation(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	identity := adminIdentity()
	leadID := uuid.New()
	repo.leads[leadID] = identity.CompanyID

	// Quotation belongs to another lead.
	otherLead := uuid.New()
	repo.leads[otherLead] = identity.CompanyID
	quoteID := uuid.New()
	repo.quotations[quoteID] = [2]uuid.UUID{otherLead, identity.CompanyID}

	_, err := svc.Create(context.Background(), identity, CreateOrderRequest{
		LeadID:      leadID,
		QuotationID: &quoteID,
		OrderNumber: "SO-003",
		Amount:      100,
		Currency:    "THB",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)

	// Quotation belongs to another tenant entirely.
	foreignQuote := uuid.New()
	repo.quotations[foreignQuote] = [2]uuid.UUID{leadID, uuid.New()}
	_, err = svc.Create(context.Background(), identity, CreateOrderRequest{
		LeadID:      leadID,
		QuotationID: &foreignQuote,
		OrderNumber: "SO-004",
		Amount:      100,
		Currency:    "THB",
	})
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateOrderStatusValidated(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	identity := adminIdentity()
	leadID := uuid.New()
	repo.leads[leadID] = identity.CompanyID

	o, err := svc.Create(context.Background(), identity, CreateOrderRequest{
		LeadID: leadID, OrderNumber: "SO-005", Amount: 50, Currency: "THB",
	})
	require.NoError(t, err)

	bogus := "Teleported"
	_, err = svc.Update(context.Background(), identity, o.ID, UpdateOrderRequest{Status: &bogus})
	assert.ErrorIs(t, err, shared.ErrValidation)

	confirmed := StatusConfirmed
	updated, err := svc.Update(context.Background(), identity, o.ID, UpdateOrderRequest{Status: &confirmed})
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, updated.Status)
}

func TestOrderOwnership(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo)
	admin := adminIdentity()
	leadID := uuid.New()
	repo.leads[leadID] = admin.CompanyID

	o, err := svc.Create(context.Background(), admin, CreateOrderRequest{
		LeadID: leadID, OrderNumber: "SO-006", Amount: 50, Currency: "THB",
	})
	require.NoError(t, err)

	stranger := shared.Identity{UserID: uuid.New(), CompanyID: admin.CompanyID, Role: "sales", IsActive: true}
	_, err = svc.Get(context.Background(), stranger, o.ID)
	assert.ErrorIs(t, err, shared.ErrForbidden)

	outsider := adminIdentity()
	_, err = svc.Get(context.Background(), outsider, o.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
