package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"go-bookstore/internal/model"
	"go-bookstore/pkg/apierror"
)

// Reasons reported in the details field of a 401.
const (
	ReasonHeaderMissing = "header_missing"
	ReasonBadFormat     = "bad_format"
	ReasonTokenExpired  = "token_expired"
	ReasonTokenInvalid  = "token_invalid"
)

type tokenVerifier interface {
	Verify(tokenString string) (*model.AuthClaims, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	verifier tokenVerifier
}

func NewAuthMiddleware(verifier tokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// RequireAuth accepts only "Authorization: Bearer <token>" with a valid,
// unexpired token and stores the caller's claims in the request context.
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.TrimSpace(header) == "" {
			writeAPIError(w, apierror.Unauthorized("authorization header required", ReasonHeaderMissing))
			return
		}

		parts := strings.Fields(header)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			writeAPIError(w, apierror.Unauthorized("invalid authorization format", ReasonBadFormat))
			return
		}

		claims, err := m.verifier.Verify(parts[1])
		if errors.Is(err, model.ErrTokenExpired) {
			writeAPIError(w, apierror.Unauthorized("token expired", ReasonTokenExpired))
			return
		}
		if err != nil {
			writeAPIError(w, apierror.Unauthorized("invalid token", ReasonTokenInvalid))
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles must run after RequireAuth.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...model.Role) func(http.Handler) http.Handler {
	roleSet := map[model.Role]struct{}{}
	for _, role := range allowedRoles {
		roleSet[role] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeAPIError(w, apierror.Unauthorized("authentication required", ""))
				return
			}

			if _, exists := roleSet[claims.Role]; !exists {
				writeAPIError(w, apierror.Forbidden("insufficient permissions"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*model.AuthClaims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*model.AuthClaims)
	return claims, ok && claims != nil
}

// WithClaims is the inverse of ClaimsFromContext.
func WithClaims(ctx context.Context, claims *model.AuthClaims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}
