package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var secret = []byte("test-secret")

func sign(t *testing.T, claims jwt.MapClaims, key []byte) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
	require.NoError(t, err)

	return token
}

func protected() http.Handler {
	return NewAuthMiddleware(secret)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, _ := UserID(r.Context())
		_, _ = w.Write([]byte(id))
	}))
}

func TestAuthMiddleware(t *testing.T) {
	valid := sign(t, jwt.MapClaims{"id": "u1", "exp": time.Now().Add(time.Hour).Unix()}, secret)

	tests := []struct {
		name       string
		prepare    func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bearer header",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+valid) },
			wantStatus: http.StatusOK,
			wantBody:   "u1",
		},
		{
			name:       "cookie",
			prepare:    func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: valid}) },
			wantStatus: http.StatusOK,
			wantBody:   "u1",
		},
		{
			name:       "numeric id",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+sign(t, jwt.MapClaims{"id": 42}, secret)) },
			wantStatus: http.StatusOK,
			wantBody:   "42",
		},
		{
			name:       "missing token",
			prepare:    func(*http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong key",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+sign(t, jwt.MapClaims{"id": "u1"}, []byte("other"))) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "expired",
			prepare: func(r *http.Request) {
				r.Header.Set("Authorization", "Bearer "+sign(t, jwt.MapClaims{"id": "u1", "exp": time.Now().Add(-time.Hour).Unix()}, secret))
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "fractional id",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+sign(t, jwt.MapClaims{"id": 12.5}, secret)) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "id beyond exact range",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+sign(t, jwt.MapClaims{"id": 1e300}, secret)) },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no id claim",
			prepare:    func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+sign(t, jwt.MapClaims{"sub": "u1"}, secret)) },
			wantStatus: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			tt.prepare(req)
			rec := httptest.NewRecorder()

			protected().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}
