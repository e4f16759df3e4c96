package service

import (
	"context"
	"errors"
	"time"

	"go-bookstore/internal/model"
	"go-bookstore/internal/repository"
	"go-bookstore/internal/util"
	"go-bookstore/pkg/apierror"
)

type BookService struct {
	store repository.Store
}

func NewBookService(store repository.Store) *BookService {
	return &BookService{store: store}
}

func (s *BookService) Create(ctx context.Context, req model.CreateBookRequest) (model.Book, error) {
	title := util.CleanText(req.Title)
	author := util.CleanText(req.Author)
	if title == "" || author == "" {
		return model.Book{}, apierror.BadRequest("title and author are required", "")
	}

	patch, err := cleanPatch(model.BookPatch{Title: &title, Author: &author, PublishedDate: req.PublishedDate})
	if err != nil {
		return model.Book{}, err
	}

	available := true
	if req.Available != nil {
		available = *req.Available
	}

	now := time.Now().UTC()
	return s.store.Books().Create(ctx, model.Book{
		Title:         *patch.Title,
		Author:        *patch.Author,
		PublishedDate: patch.PublishedDate,
		Available:     available,
		CreatedAt:     now,
		UpdatedAt:     now,
	})
}

func (s *BookService) List(ctx context.Context) ([]model.Book, error) {
	return s.store.Books().List(ctx)
}

func (s *BookService) Get(ctx context.Context, id int64) (model.Book, error) {
	book, err := s.store.Books().FindByID(ctx, id)
	if errors.Is(err, model.ErrBookNotFound) {
		return model.Book{}, bookNotFound()
	}
	return book, err
}

// Update applies a partial change; fields absent from patch keep their value.
func (s *BookService) Update(ctx context.Context, id int64, patch model.BookPatch) (model.Book, error) {
	patch, err := cleanPatch(patch)
	if err != nil {
		return model.Book{}, err
	}

	var updated model.Book
	err = s.store.WithinTx(ctx, func(tx repository.Store) error {
		current, err := tx.Books().FindByID(ctx, id)
		if err != nil {
			return err
		}

		next := patch.Apply(current)
		next.UpdatedAt = time.Now().UTC()
		updated, err = tx.Books().Update(ctx, next)
		return err
	})
	if errors.Is(err, model.ErrBookNotFound) {
		return model.Book{}, bookNotFound()
	}
	if err != nil {
		return model.Book{}, err
	}
	return updated, nil
}

func (s *BookService) Delete(ctx context.Context, id int64) error {
	err := s.store.Books().Delete(ctx, id)
	if errors.Is(err, model.ErrBookNotFound) {
		return bookNotFound()
	}
	return err
}

// cleanPatch normalizes the provided fields. Title and author may not be
// blanked; a blank published date counts as absent.
func cleanPatch(patch model.BookPatch) (model.BookPatch, error) {
	if patch.Title != nil {
		title := util.CleanText(*patch.Title)
		if title == "" {
			return patch, apierror.BadRequest("title cannot be empty", "title")
		}
		if err := util.CheckLength("title", title, util.MaxTitleLen); err != nil {
			return patch, err
		}
		patch.Title = &title
	}

	if patch.Author != nil {
		author := util.CleanText(*patch.Author)
		if author == "" {
			return patch, apierror.BadRequest("author cannot be empty", "author")
		}
		if err := util.CheckLength("author", author, util.MaxAuthorLen); err != nil {
			return patch, err
		}
		patch.Author = &author
	}

	if patch.PublishedDate != nil {
		published := util.CleanText(*patch.PublishedDate)
		if err := util.CheckLength("published_date", published, util.MaxPublishedDateLen); err != nil {
			return patch, err
		}
		if published == "" {
			patch.PublishedDate = nil
		} else {
			patch.PublishedDate = &published
		}
	}

	return patch, nil
}

func bookNotFound() error {
	return apierror.NotFound("book not found", "")
}
