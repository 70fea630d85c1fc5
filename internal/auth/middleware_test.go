package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/meridian-crm/meridian/internal/shared"
)

type mockUserRepo struct {
	byEmail map[string]*User
	byID    map[uuid.UUID]*User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		byEmail: make(map[string]*User),
		byID:    make(map[uuid.UUID]*User),
	}
}

func (m *mockUserRepo) add(u *User) {
	m.byEmail[u.Email] = u
	m.byID[u.ID] = u
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id uuid.UUID) (*User, error) {
	u, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return u, nil
}

func (m *mockUserRepo) RegisterTenant(ctx context.Context, companyName string, admin User) error {
	if _, exists := m.byEmail[admin.Email]; exists {
		return shared.ErrConflict
	}
	copied := admin
	m.add(&copied)
	return nil
}

func newTestService(repo Repository) *Service {
	return NewService(repo, NewTokenManager("test-secret", time.Hour))
}

func seedUser(repo *mockUserRepo, active bool) (*User, string) {
	password := "correct horse battery"
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &User{
		ID:           uuid.New(),
		CompanyID:    uuid.New(),
		Email:        "sales@acme.test",
		PasswordHash: string(hash),
		Role:         shared.RoleAdmin,
		IsActive:     active,
	}
	repo.add(u)
	return u, password
}

func TestMiddlewareInjectsIdentity(t *testing.T) {
	repo := newMockUserRepo()
	user, _ := seedUser(repo, true)
	svc := newTestService(repo)

	token, err := svc.tokens.Issue(user.ID, time.Now().UTC())
	require.NoError(t, err)

	var seen shared.Identity
	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, ok := shared.IdentityFromContext(r.Context())
		require.True(t, ok)
		seen = identity
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, seen.UserID)
	assert.Equal(t, user.CompanyID, seen.CompanyID)
	assert.True(t, seen.IsAdmin())
}

func TestMiddlewareRejectsMissingOrMalformedHeader(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)
	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	for _, header := range []string{"", "Bearer", "Bearer   ", "Basic dXNlcg==", "token-without-scheme"} {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestMiddlewareRejectsInactiveUser(t *testing.T) {
	repo := newMockUserRepo()
	user, _ := seedUser(repo, false)
	svc := newTestService(repo)

	token, err := svc.tokens.Issue(user.ID, time.Now().UTC())
	require.NoError(t, err)

	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMiddlewareRejectsUnknownSubject(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)

	token, err := svc.tokens.Issue(uuid.New(), time.Now().UTC())
	require.NoError(t, err)

	handler := Middleware(svc)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/v1/leads", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate(t *testing.T) {
	repo := newMockUserRepo()
	user, password := seedUser(repo, true)
	svc := newTestService(repo)

	got, token, err := svc.Authenticate(context.Background(), user.Email, password)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.NotEmpty(t, token)

	_, _, err = svc.Authenticate(context.Background(), user.Email, "wrong")
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, _, err = svc.Authenticate(context.Background(), "nobody@acme.test", password)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestAuthenticateInactive(t *testing.T) {
	repo := newMockUserRepo()
	user, password := seedUser(repo, false)
	svc := newTestService(repo)

	_, _, err := svc.Authenticate(context.Background(), user.Email, password)
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := newMockUserRepo()
	svc := newTestService(repo)

	_, token, err := svc.Register(context.Background(), "ACME", "owner@acme.test", "password123", nil)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	_, _, err = svc.Register(context.Background(), "ACME Again", "owner@acme.test", "password123", nil)
	assert.ErrorIs(t, err, shared.ErrConflict)
}
