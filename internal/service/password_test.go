package service

import (
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-bookstore/pkg/apierror"
)

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(bcrypt.MinCost)

	first, err := hasher.Hash("pw1")
	require.NoError(t, err)
	second, err := hasher.Hash("pw1")
	require.NoError(t, err)

	require.NotEqual(t, "pw1", first)
	require.NotEqual(t, first, second, "salted hashes of equal inputs must differ")
	require.True(t, hasher.Verify("pw1", first))
	require.True(t, hasher.Verify("pw1", second))
	require.False(t, hasher.Verify("pw2", first))
}

func TestPasswordHasherMalformedHash(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(bcrypt.MinCost)
	require.False(t, hasher.Verify("pw1", "not-a-bcrypt-hash"))
	require.False(t, hasher.Verify("pw1", ""))
}

func TestPasswordHasherRejectsOverlongInput(t *testing.T) {
	t.Parallel()

	hasher := NewPasswordHasher(bcrypt.MinCost)
	_, err := hasher.Hash(strings.Repeat("x", 73))

	var apiErr *apierror.APIError
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
}

func TestNewPasswordHasherClampsCost(t *testing.T) {
	t.Parallel()

	require.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
	require.Equal(t, bcrypt.MinCost, NewPasswordHasher(bcrypt.MinCost).cost)
}
