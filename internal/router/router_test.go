package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"go-bookstore/internal/config"
	"go-bookstore/internal/handler"
	"go-bookstore/internal/middleware"
	"go-bookstore/internal/model"
	"go-bookstore/internal/repository"
	"go-bookstore/internal/service"
)

type testServer struct {
	handler http.Handler
	store   *repository.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	cfg := &config.Config{
		RequestTimeout:   5 * time.Second,
		RateLimitRPM:     0,
		AuthRateLimitRPM: 1000,
	}

	store := repository.NewMemoryStore()
	hasher := service.NewPasswordHasher(bcrypt.MinCost)
	tokens, err := service.NewTokenIssuer("router-test-secret", "HS256", time.Hour)
	require.NoError(t, err)

	authService := service.NewAuthService(store, hasher, tokens)
	resetService := service.NewResetService(store, hasher, 30*time.Minute)
	bookService := service.NewBookService(store)

	require.NoError(t, authService.EnsureAdmin(context.Background(), "admin", "admin@example.com", "adminpass"))

	return &testServer{
		handler: New(
			cfg,
			middleware.NewAuthMiddleware(tokens),
			handler.NewHealthHandler(store),
			handler.NewAuthHandler(authService, resetService),
			handler.NewBookHandler(bookService),
		),
		store: store,
	}
}

func (s *testServer) do(t *testing.T, method string, path string, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) login(t *testing.T, username string, password string) model.LoginResult {
	t.Helper()

	rec := s.do(t, http.MethodPost, "/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result model.LoginResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.AccessToken)
	return result
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()

	body := decode[model.ErrorResponse](t, rec)
	require.NotNil(t, body.Error, rec.Body.String())
	return body.Error.Code
}

func TestHealthAndIndex(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())

	rec = srv.do(t, http.MethodGet, "/", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Bookstore")
}

func TestUserScenario(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "email": "a@x.io", "password": "pw1",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	registered := decode[model.RegisterResponse](t, rec)
	assert.Equal(t, "alice", registered.User.Username)
	assert.Equal(t, model.RoleUser, registered.User.Role)
	assert.NotContains(t, rec.Body.String(), "password")

	alice := srv.login(t, "alice", "pw1")
	assert.Equal(t, model.RoleUser, alice.Role)
	assert.Equal(t, "Bearer", alice.TokenType)

	rec = srv.do(t, http.MethodGet, "/books", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/books", alice.AccessToken, map[string]string{"title": "T", "author": "A"})
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "FORBIDDEN", errorCode(t, rec))

	rec = srv.do(t, http.MethodPost, "/change_password", alice.AccessToken, map[string]string{
		"current_password": "pw1", "new_password": "pw2",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/login", "", map[string]string{"username": "alice", "password": "pw1"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	srv.login(t, "alice", "pw2")

	rec = srv.do(t, http.MethodGet, "/me", alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[model.AuthUser](t, rec)
	assert.Equal(t, "a@x.io", me.Email)
}

func TestForgotAndResetScenario(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "email": "a@x.io", "password": "pw1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = srv.do(t, http.MethodPost, "/forgot_password", "", map[string]string{"email": "nobody@x.io"})
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodPost, "/forgot_password", "", map[string]string{"email": "a@x.io"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	ticket := decode[model.ResetTicket](t, rec)
	require.Len(t, ticket.Token, 64)
	assert.True(t, ticket.ExpiresAt.After(time.Now()))

	rec = srv.do(t, http.MethodPost, "/reset_password", "", map[string]string{"token": ticket.Token, "new_password": "pw3"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	srv.login(t, "alice", "pw3")

	rec = srv.do(t, http.MethodPost, "/reset_password", "", map[string]string{"token": ticket.Token, "new_password": "pw4"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, rec))
}

func TestAdminBookLifecycle(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login(t, "admin", "adminpass")
	assert.Equal(t, model.RoleAdmin, admin.Role)

	rec := srv.do(t, http.MethodPost, "/books", admin.AccessToken, map[string]any{
		"title": "Dune", "author": "Herbert", "published_date": "1965-08-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[model.BookResponse](t, rec).Book
	assert.True(t, created.Available)

	path := fmt.Sprintf("/books/%d", created.ID)

	first := srv.do(t, http.MethodGet, path, admin.AccessToken, nil)
	second := srv.do(t, http.MethodGet, path, admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())

	rec = srv.do(t, http.MethodPut, path, admin.AccessToken, map[string]any{"available": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decode[model.BookResponse](t, rec).Book
	assert.False(t, updated.Available)
	assert.Equal(t, "Dune", updated.Title)

	rec = srv.do(t, http.MethodPut, path, admin.AccessToken, map[string]any{"title": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = srv.do(t, http.MethodGet, "/books", admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]model.Book](t, rec), 1)

	rec = srv.do(t, http.MethodDelete, path, admin.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = srv.do(t, http.MethodGet, path, admin.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = srv.do(t, http.MethodDelete, path, admin.AccessToken, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestBookRequestValidation(t *testing.T) {
	srv := newTestServer(t)
	admin := srv.login(t, "admin", "adminpass")

	for _, path := range []string{"/books/abc", "/books/0", "/books/-3"} {
		rec := srv.do(t, http.MethodGet, path, admin.AccessToken, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}

	rec := srv.do(t, http.MethodPost, "/books", admin.AccessToken, map[string]string{"title": "No author"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/books", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer "+admin.AccessToken)
	raw := httptest.NewRecorder()
	srv.handler.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
}

func TestAuthFailures(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodGet, "/books", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, middleware.ReasonHeaderMissing, decode[model.ErrorResponse](t, rec).Error.Details)

	rec = srv.do(t, http.MethodGet, "/books", "not-a-jwt", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, middleware.ReasonTokenInvalid, decode[model.ErrorResponse](t, rec).Error.Details)

	rec = srv.do(t, http.MethodPost, "/change_password", "", map[string]string{"current_password": "x", "new_password": "y"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRegisterConflicts(t *testing.T) {
	srv := newTestServer(t)

	rec := srv.do(t, http.MethodPost, "/register", "", map[string]string{
		"username": "alice", "email": "a@x.io", "password": "pw1",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	for name, body := range map[string]map[string]string{
		"same username": {"username": "alice", "email": "other@x.io", "password": "pw"},
		"same email":    {"username": "alice2", "email": "a@x.io", "password": "pw"},
	} {
		t.Run(name, func(t *testing.T) {
			rec := srv.do(t, http.MethodPost, "/register", "", body)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "ALREADY_EXISTS", errorCode(t, rec))
		})
	}

	rec = srv.do(t, http.MethodPost, "/register", "", map[string]string{"username": "bob"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, rec))
}
