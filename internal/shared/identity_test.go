package shared

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type testRow struct {
	company uuid.UUID
	owners  []uuid.UUID
}

func (r testRow) TenantID() uuid.UUID   { return r.company }
func (r testRow) OwnerIDs() []uuid.UUID { return r.owners }

func TestAuthorizeCrossTenantIsNotFound(t *testing.T) {
	scope := Scope{CompanyID: uuid.New(), UserID: uuid.New(), Admin: true}
	row := testRow{company: uuid.New(), owners: []uuid.UUID{scope.UserID}}

	// Even an admin of another tenant sees nothing, not a forbidden hint.
	assert.ErrorIs(t, Authorize(scope, row), ErrNotFound)
}

func TestAuthorizeAdminWithinTenant(t *testing.T) {
	company := uuid.New()
	scope := Scope{CompanyID: company, UserID: uuid.New(), Admin: true}
	row := testRow{company: company, owners: []uuid.UUID{uuid.New()}}

	assert.NoError(t, Authorize(scope, row))
}

func TestAuthorizeOwner(t *testing.T) {
	company := uuid.New()
	user := uuid.New()
	scope := Scope{CompanyID: company, UserID: user}

	assert.NoError(t, Authorize(scope, testRow{company: company, owners: []uuid.UUID{user}}))
	assert.NoError(t, Authorize(scope, testRow{company: company, owners: []uuid.UUID{uuid.New(), user}}))
}

func TestAuthorizeNonOwnerForbidden(t *testing.T) {
	company := uuid.New()
	scope := Scope{CompanyID: company, UserID: uuid.New()}
	row := testRow{company: company, owners: []uuid.UUID{uuid.New()}}

	assert.ErrorIs(t, Authorize(scope, row), ErrForbidden)
}

func TestAuthorizeNilOwnerNeverMatches(t *testing.T) {
	company := uuid.New()
	scope := Scope{CompanyID: company, UserID: uuid.Nil}
	row := testRow{company: company, owners: []uuid.UUID{uuid.Nil}}

	assert.ErrorIs(t, Authorize(scope, row), ErrForbidden)
}
