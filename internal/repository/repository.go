package repository

import (
	"context"
	"time"

	"go-bookstore/internal/model"
)

// Users is the credential half of the store. Lookups report
// model.ErrUserNotFound when nothing matches and Create reports
// model.ErrUserAlreadyExists on a username or email collision.
type Users interface {
	FindByID(ctx context.Context, id int64) (model.User, error)
	FindByUsername(ctx context.Context, username string) (model.User, error)
	FindByEmail(ctx context.Context, email string) (model.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username string, email string) (bool, error)
	Create(ctx context.Context, u model.User) (model.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) error
}

type ResetTokens interface {
	Create(ctx context.Context, t model.PasswordResetToken) (model.PasswordResetToken, error)
	// FindByHashForUpdate locks the row for the rest of the surrounding
	// transaction.
	FindByHashForUpdate(ctx context.Context, tokenHash string) (model.PasswordResetToken, error)
	DeleteAllForUser(ctx context.Context, userID int64) (int64, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type Books interface {
	Create(ctx context.Context, b model.Book) (model.Book, error)
	List(ctx context.Context) ([]model.Book, error)
	FindByID(ctx context.Context, id int64) (model.Book, error)
	Update(ctx context.Context, b model.Book) (model.Book, error)
	Delete(ctx context.Context, id int64) error
}

// Store groups the repositories behind one transactional boundary.
type Store interface {
	Users() Users
	ResetTokens() ResetTokens
	Books() Books
	// WithinTx runs fn against a transactional view of the store. The
	// transaction commits when fn returns nil and rolls back otherwise,
	// including when fn panics.
	WithinTx(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
