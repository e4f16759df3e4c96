package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-bookstore/internal/repository"
	"go-bookstore/pkg/apierror"
)

type testDeps struct {
	store  *repository.MemoryStore
	hasher *PasswordHasher
	tokens *TokenIssuer
	auth   *AuthService
	reset  *ResetService
	books  *BookService
}

func newTestDeps(t *testing.T) testDeps {
	t.Helper()

	store := repository.NewMemoryStore()
	hasher := NewPasswordHasher(bcrypt.MinCost)
	tokens, err := NewTokenIssuer("test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	return testDeps{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		auth:   NewAuthService(store, hasher, tokens),
		reset:  NewResetService(store, hasher, 30*time.Minute),
		books:  NewBookService(store),
	}
}

func requireAPIStatus(t *testing.T, err error, status int) *apierror.APIError {
	t.Helper()

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr), "expected *apierror.APIError, got %v", err)
	require.Equal(t, status, apiErr.HTTPStatus)
	return apiErr
}
