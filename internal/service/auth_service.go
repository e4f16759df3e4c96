package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go-bookstore/internal/model"
	"go-bookstore/internal/repository"
	"go-bookstore/internal/util"
	"go-bookstore/pkg/apierror"
)

type AuthService struct {
	store  repository.Store
	hasher *PasswordHasher
	tokens *TokenIssuer
}

func NewAuthService(store repository.Store, hasher *PasswordHasher, tokens *TokenIssuer) *AuthService {
	return &AuthService{store: store, hasher: hasher, tokens: tokens}
}

func (s *AuthService) Register(ctx context.Context, username string, email string, password string) (model.AuthUser, error) {
	username = util.CleanText(username)
	email = util.CleanText(email)

	if username == "" || email == "" || password == "" {
		return model.AuthUser{}, apierror.BadRequest("username, email, and password are required", "")
	}
	if err := util.CheckLength("username", username, util.MaxUsernameLen); err != nil {
		return model.AuthUser{}, err
	}
	if err := util.CheckLength("email", email, util.MaxEmailLen); err != nil {
		return model.AuthUser{}, err
	}

	user, err := s.createUser(ctx, username, email, password, model.RoleUser)
	if err != nil {
		return model.AuthUser{}, err
	}

	slog.Info("user registered", "user_id", user.ID, "username", user.Username)
	return user.Public(), nil
}

func (s *AuthService) createUser(ctx context.Context, username string, email string, password string, role model.Role) (model.User, error) {
	exists, err := s.store.Users().ExistsByUsernameOrEmail(ctx, username, email)
	if err != nil {
		return model.User{}, err
	}
	if exists {
		return model.User{}, apierror.Conflict("username or email already exists", "")
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return model.User{}, err
	}

	now := time.Now().UTC()
	user, err := s.store.Users().Create(ctx, model.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if errors.Is(err, model.ErrUserAlreadyExists) {
		// Lost a race against a concurrent registration.
		return model.User{}, apierror.Conflict("username or email already exists", "")
	}
	if err != nil {
		return model.User{}, err
	}

	return user, nil
}

func (s *AuthService) Login(ctx context.Context, username string, password string) (model.LoginResult, error) {
	user, err := s.store.Users().FindByUsername(ctx, util.CleanText(username))
	if errors.Is(err, model.ErrUserNotFound) {
		return model.LoginResult{}, apierror.Unauthorized("invalid credentials", "")
	}
	if err != nil {
		return model.LoginResult{}, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return model.LoginResult{}, apierror.Unauthorized("invalid credentials", "")
	}

	token, _, err := s.tokens.Issue(user.ID, user.Username, user.Role)
	if err != nil {
		return model.LoginResult{}, err
	}

	return model.LoginResult{
		Message:     "login successful",
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.tokens.TTL().Seconds()),
		Role:        user.Role,
		User:        user.Public(),
	}, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, userID int64, currentPassword string, newPassword string) error {
	if newPassword == "" {
		return apierror.BadRequest("new_password is required", "new_password")
	}

	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil && !errors.Is(err, model.ErrUserNotFound) {
		return err
	}
	if err != nil || !s.hasher.Verify(currentPassword, user.PasswordHash) {
		return apierror.BadRequest("invalid current password", "current_password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	if err := s.store.Users().UpdatePassword(ctx, user.ID, hash); err != nil {
		return err
	}

	slog.Info("password changed", "user_id", user.ID)
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID int64) (model.AuthUser, error) {
	user, err := s.store.Users().FindByID(ctx, userID)
	if err != nil {
		return model.AuthUser{}, err
	}
	return user.Public(), nil
}

// EnsureAdmin creates the bootstrap administrator unless a user with that
// username already exists. Safe to run on every start.
func (s *AuthService) EnsureAdmin(ctx context.Context, username string, email string, password string) error {
	_, err := s.store.Users().FindByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return err
	}

	admin, err := s.createUser(ctx, username, email, password, model.RoleAdmin)
	if err != nil {
		return err
	}

	slog.Info("default admin created", "user_id", admin.ID, "username", admin.Username)
	return nil
}
