package handler

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"go-bookstore/internal/model"
	"go-bookstore/internal/service"
	"go-bookstore/pkg/apierror"
)

type BookHandler struct {
	service *service.BookService
}

func NewBookHandler(service *service.BookService) *BookHandler {
	return &BookHandler{service: service}
}

func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateBookRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	book, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.BookResponse{Message: "Book added successfully", Book: book})
}

func (h *BookHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, books)
}

func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	book, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, book)
}

func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateBookRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, err)
		return
	}

	book, err := h.service.Update(r.Context(), id, payload.Patch())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.BookResponse{Message: "Book updated successfully", Book: book})
}

func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.MessageResponse{Message: "Book deleted successfully"})
}

func bookID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("book id must be a positive integer", "id")
	}
	return id, nil
}
