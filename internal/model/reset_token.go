package model

import "time"

// PasswordResetToken is the persisted half of a reset token. Only the
// SHA-256 digest of the token handed to the user is stored.
type PasswordResetToken struct {
	ID        int64
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func (t PasswordResetToken) Expired(now time.Time) bool {
	return now.After(t.ExpiresAt)
}

// ResetTicket is what forgot_password hands back for out-of-band delivery.
type ResetTicket struct {
	Message   string    `json:"message"`
	Token     string    `json:"reset_token"`
	ExpiresAt time.Time `json:"expires_at"`
}
