package auth

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/corray333/foodorder/internal/service/errs"
	"github.com/corray333/foodorder/pkg/http/response"
	"github.com/golang-jwt/jwt/v5"
)

// CookieName is the cookie the web client stores its token in.
const CookieName = "token"

type userIDKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserID returns the authenticated user id stored by the middleware.
func UserID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userIDKey{}).(string)
	return id, ok && id != ""
}

// NewAuthMiddleware rejects requests without a valid HMAC-signed token. The token is read
// from the token cookie first, then from the Authorization header.
func NewAuthMiddleware(secret []byte) func(next http.Handler) http.Handler {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := tokenFromRequest(r)
			if raw == "" {
				response.WriteError(w, r, errs.Unauthorized("token not provided"))

				return
			}

			claims := jwt.MapClaims{}
			if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (any, error) {
				return secret, nil
			}); err != nil {
				response.WriteError(w, r, errs.Unauthorized("invalid or expired token"))

				return
			}

			id, err := userIDFromClaims(claims)
			if err != nil {
				response.WriteError(w, r, errs.Unauthorized(err.Error()))

				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), id)))
		})
	}
}

func tokenFromRequest(r *http.Request) string {
	if c, err := r.Cookie(CookieName); err == nil && c.Value != "" {
		return c.Value
	}

	return strings.TrimSpace(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
}

// maxExactID is the largest integer a JSON number carries without loss.
const maxExactID = 1 << 53

func userIDFromClaims(claims jwt.MapClaims) (string, error) {
	switch id := claims["id"].(type) {
	case string:
		if id != "" {
			return id, nil
		}
	case float64:
		if id != math.Trunc(id) || math.Abs(id) > maxExactID {
			return "", fmt.Errorf("token user id %v is not an integer", id)
		}

		return strconv.FormatInt(int64(id), 10), nil
	}

	return "", fmt.Errorf("token has no user id")
}
