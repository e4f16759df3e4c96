package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// querier is satisfied by *pgxpool.Pool and pgx.Tx alike, so every
// repository works both inside and outside a transaction.
type querier interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PostgresStore struct {
	db     querier
	users  *UserRepository
	tokens *ResetTokenRepository
	books  *BookRepository
}

func NewPostgresStore(db querier) *PostgresStore {
	return &PostgresStore{
		db:     db,
		users:  NewUserRepository(db),
		tokens: NewResetTokenRepository(db),
		books:  NewBookRepository(db),
	}
}

func (s *PostgresStore) Users() Users             { return s.users }
func (s *PostgresStore) ResetTokens() ResetTokens { return s.tokens }
func (s *PostgresStore) Books() Books             { return s.books }

func (s *PostgresStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	defer func() {
		if recovered := recover(); recovered != nil {
			_ = tx.Rollback(ctx)
			panic(recovered)
		}
	}()

	if err := fn(NewPostgresStore(tx)); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.Warn("transaction rollback failed", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	pinger, ok := s.db.(interface{ Ping(context.Context) error })
	if !ok {
		return nil
	}
	return pinger.Ping(ctx)
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
