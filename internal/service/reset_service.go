package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go-bookstore/internal/model"
	"go-bookstore/internal/repository"
	"go-bookstore/internal/util"
	"go-bookstore/pkg/apierror"
)

const resetTokenBytes = 32

// ResetService issues single-use password reset tokens and redeems them.
type ResetService struct {
	store  repository.Store
	hasher *PasswordHasher
	ttl    time.Duration
	now    func() time.Time
}

func NewResetService(store repository.Store, hasher *PasswordHasher, ttl time.Duration) *ResetService {
	return &ResetService{store: store, hasher: hasher, ttl: ttl, now: time.Now}
}

// Create issues a new token for the account owning email. Outstanding tokens
// for the same account stay valid until one of them is redeemed.
func (s *ResetService) Create(ctx context.Context, email string) (model.ResetTicket, error) {
	email = util.CleanText(email)
	if email == "" {
		return model.ResetTicket{}, apierror.BadRequest("email is required", "email")
	}

	user, err := s.store.Users().FindByEmail(ctx, email)
	if errors.Is(err, model.ErrUserNotFound) {
		return model.ResetTicket{}, apierror.NotFound("no account found for this email", "")
	}
	if err != nil {
		return model.ResetTicket{}, err
	}

	token, err := newResetToken()
	if err != nil {
		return model.ResetTicket{}, err
	}

	now := s.now().UTC()
	stored, err := s.store.ResetTokens().Create(ctx, model.PasswordResetToken{
		UserID:    user.ID,
		TokenHash: digest(token),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	})
	if err != nil {
		return model.ResetTicket{}, err
	}

	slog.Info("password reset token issued", "user_id", user.ID, "expires_at", stored.ExpiresAt)
	return model.ResetTicket{
		Message:   "password reset token created (deliver out of band)",
		Token:     token,
		ExpiresAt: stored.ExpiresAt,
	}, nil
}

// Redeem sets a new password and drops every reset token of the account in
// one transaction, so a token can succeed at most once.
func (s *ResetService) Redeem(ctx context.Context, token string, newPassword string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apierror.BadRequest("token is required", "token")
	}
	if newPassword == "" {
		return apierror.BadRequest("new_password is required", "new_password")
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return err
	}

	var userID int64
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		stored, err := tx.ResetTokens().FindByHashForUpdate(ctx, digest(token))
		if err != nil {
			return err
		}
		if stored.Expired(s.now()) {
			return model.ErrResetTokenExpired
		}

		if err := tx.Users().UpdatePassword(ctx, stored.UserID, hash); err != nil {
			return err
		}
		if _, err := tx.ResetTokens().DeleteAllForUser(ctx, stored.UserID); err != nil {
			return err
		}

		userID = stored.UserID
		return nil
	})
	if errors.Is(err, model.ErrResetTokenNotFound) || errors.Is(err, model.ErrResetTokenExpired) {
		return apierror.BadRequest("invalid or expired reset token", "")
	}
	if errors.Is(err, model.ErrUserNotFound) {
		// The account went away after the token was issued.
		return apierror.BadRequest("invalid or expired reset token", "")
	}
	if err != nil {
		return err
	}

	slog.Info("password reset", "user_id", userID)
	return nil
}

// PurgeExpired deletes reset tokens that can no longer be redeemed.
func (s *ResetService) PurgeExpired(ctx context.Context) (int64, error) {
	return s.store.ResetTokens().DeleteExpired(ctx, s.now().UTC())
}

// StartCleanupTicker purges expired tokens every interval until ctx is done.
func (s *ResetService) StartCleanupTicker(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			purged, err := s.PurgeExpired(ctx)
			if err != nil {
				slog.Warn("reset token cleanup failed", "error", err)
				continue
			}
			if purged > 0 {
				slog.Info("expired reset tokens purged", "count", purged)
			}
		}
	}
}

func newResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

func digest(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
