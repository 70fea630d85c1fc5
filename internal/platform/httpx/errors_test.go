package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meridian-crm/meridian/internal/shared"
)

func TestRespondErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		title  string
	}{
		{"validation", shared.ErrValidation, http.StatusBadRequest, "Validation Failed"},
		{"wrapped validation", fmt.Errorf("%w: field x", shared.ErrValidation), http.StatusBadRequest, "Validation Failed"},
		{"unauthenticated", shared.ErrUnauthenticated, http.StatusUnauthorized, "Unauthorized"},
		{"bad credentials", shared.ErrInvalidCredentials, http.StatusUnauthorized, "Unauthorized"},
		{"inactive", shared.ErrAccountInactive, http.StatusForbidden, "Account Inactive"},
		{"forbidden", shared.ErrForbidden, http.StatusForbidden, "Forbidden"},
		{"not found", shared.ErrNotFound, http.StatusNotFound, "Not Found"},
		{"conflict", shared.ErrConflict, http.StatusConflict, "Conflict"},
		{"unknown", errors.New("database exploded"), http.StatusInternalServerError, "Internal Error"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RespondError(rec, tc.err)

			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var problem ProblemDetail
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
			assert.Equal(t, tc.title, problem.Title)
			assert.Equal(t, tc.status, problem.Status)
		})
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, errors.New("pq: connection refused at 10.0.0.3"))

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Empty(t, problem.Detail)
}
