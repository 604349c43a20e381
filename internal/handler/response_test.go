package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/catalog-server/internal/apperror"
)

func TestWriteError_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantType   string
	}{
		{"validation", apperror.ValidationFailed("name", "too short"), http.StatusBadRequest, "validation_error"},
		{"auth required", apperror.AuthRequired(), http.StatusUnauthorized, "unauthorized"},
		{"deactivated", apperror.Deactivated(), http.StatusForbidden, "account_deactivated"},
		{"not owner", apperror.NotOwner("tag"), http.StatusForbidden, "not_owner"},
		{"admin only", apperror.AdminOnly(), http.StatusForbidden, "admin_only"},
		{"not found", apperror.NotFound("tag", "abc"), http.StatusNotFound, "not_found"},
		{"duplicate name", apperror.DuplicateName("name", "soccer"), http.StatusConflict, "duplicate_name"},
		{"conflict", apperror.Conflict("user", "a@b.com"), http.StatusConflict, "conflict"},
		{"invalid target", apperror.InvalidTarget("admin"), http.StatusUnprocessableEntity, "invalid_target"},
		{"unknown", errors.New("sql: driver exploded"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ErrorResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantType, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestWriteError_FieldPropagates(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, apperror.DuplicateName("name", "soccer"))

	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "name", body.Field)
}

func TestWriteError_HidesInternalDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, errors.New("SELECT * FROM users WHERE secret"))

	assert.NotContains(t, rec.Body.String(), "SELECT")
}

func TestWriteJSON_SetsContentType(t *testing.T) {
	rec := httptest.NewRecorder()
	writeJSON(rec, http.StatusCreated, map[string]string{"ok": "yes"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
