package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"go-bookstore/internal/model"
)

const bookColumns = `id, title, author, published_date, available, created_at, updated_at`

type BookRepository struct {
	db querier
}

func NewBookRepository(db querier) *BookRepository {
	return &BookRepository{db: db}
}

func (r *BookRepository) Create(ctx context.Context, b model.Book) (model.Book, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO books (title, author, published_date, available, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id`,
		b.Title, b.Author, b.PublishedDate, b.Available, b.CreatedAt, b.UpdatedAt).Scan(&b.ID)
	if err != nil {
		return model.Book{}, fmt.Errorf("create book: %w", err)
	}
	return b, nil
}

func (r *BookRepository) List(ctx context.Context) ([]model.Book, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookColumns+` FROM books ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := make([]model.Book, 0)
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.PublishedDate, &b.Available, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan book: %w", err)
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (r *BookRepository) FindByID(ctx context.Context, id int64) (model.Book, error) {
	var b model.Book
	err := r.db.QueryRow(ctx, `SELECT `+bookColumns+` FROM books WHERE id = $1`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.PublishedDate, &b.Available, &b.CreatedAt, &b.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Book{}, model.ErrBookNotFound
	}
	if err != nil {
		return model.Book{}, fmt.Errorf("find book: %w", err)
	}
	return b, nil
}

func (r *BookRepository) Update(ctx context.Context, b model.Book) (model.Book, error) {
	tag, err := r.db.Exec(ctx,
		`UPDATE books SET title = $2, author = $3, published_date = $4, available = $5, updated_at = $6
		 WHERE id = $1`,
		b.ID, b.Title, b.Author, b.PublishedDate, b.Available, b.UpdatedAt)
	if err != nil {
		return model.Book{}, fmt.Errorf("update book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.Book{}, model.ErrBookNotFound
	}
	return b, nil
}

func (r *BookRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete book: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrBookNotFound
	}
	return nil
}
