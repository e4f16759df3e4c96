package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"go-bookstore/internal/model"
)

type ResetTokenRepository struct {
	db querier
}

func NewResetTokenRepository(db querier) *ResetTokenRepository {
	return &ResetTokenRepository{db: db}
}

func (r *ResetTokenRepository) Create(ctx context.Context, t model.PasswordResetToken) (model.PasswordResetToken, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO password_reset_tokens (user_id, token_hash, expires_at, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id`,
		t.UserID, t.TokenHash, t.ExpiresAt, t.CreatedAt).Scan(&t.ID)
	if err != nil {
		return model.PasswordResetToken{}, fmt.Errorf("store reset token: %w", err)
	}
	return t, nil
}

func (r *ResetTokenRepository) FindByHashForUpdate(ctx context.Context, tokenHash string) (model.PasswordResetToken, error) {
	var t model.PasswordResetToken
	err := r.db.QueryRow(ctx,
		`SELECT id, user_id, token_hash, expires_at, created_at
		 FROM password_reset_tokens WHERE token_hash = $1
		 FOR UPDATE`, tokenHash).
		Scan(&t.ID, &t.UserID, &t.TokenHash, &t.ExpiresAt, &t.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.PasswordResetToken{}, model.ErrResetTokenNotFound
	}
	if err != nil {
		return model.PasswordResetToken{}, fmt.Errorf("find reset token: %w", err)
	}
	return t, nil
}

func (r *ResetTokenRepository) DeleteAllForUser(ctx context.Context, userID int64) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete reset tokens for user: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM password_reset_tokens WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("clean expired reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
