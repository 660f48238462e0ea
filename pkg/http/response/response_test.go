package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "validation",
			err:        errs.MissingAddressFields([]string{"city"}),
			wantStatus: http.StatusBadRequest,
			wantCode:   errs.CodeMissingAddressFields,
			wantMsg:    "missing address fields: city",
		},
		{
			name:       "not found",
			err:        errs.NotFound(errs.CodeOrderNotFound, "order not found"),
			wantStatus: http.StatusNotFound,
			wantCode:   errs.CodeOrderNotFound,
			wantMsg:    "order not found",
		},
		{
			name:       "forbidden",
			err:        errs.Forbidden("access denied"),
			wantStatus: http.StatusForbidden,
			wantCode:   errs.CodeForbidden,
			wantMsg:    "access denied",
		},
		{
			name:       "conflict",
			err:        errs.InvalidTransition("finalizado", "pendente"),
			wantStatus: http.StatusConflict,
			wantCode:   errs.CodeInvalidTransition,
		},
		{
			name:       "external hides details",
			err:        errs.ExternalService("catalog lookup failed", errors.New("dial tcp 10.0.0.1")),
			wantStatus: http.StatusInternalServerError,
			wantCode:   errs.CodeExternalService,
			wantMsg:    "internal server error",
		},
		{
			name:       "foreign error",
			err:        errors.New("pq: secret detail"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   errs.CodeInternal,
			wantMsg:    "internal server error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, httptest.NewRequest(http.MethodGet, "/", nil), tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantCode, body.Code)
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, body.Error)
			}
			assert.NotContains(t, rec.Body.String(), "secret")
			assert.NotContains(t, rec.Body.String(), "10.0.0.1")
		})
	}
}
