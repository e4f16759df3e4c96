package model

import "time"

type Book struct {
	ID            int64     `json:"id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	PublishedDate *string   `json:"published_date"`
	Available     bool      `json:"available"`
	CreatedAt     time.Time `json:"-"`
	UpdatedAt     time.Time `json:"-"`
}

// BookPatch carries the fields of a partial update; nil means "leave as is".
type BookPatch struct {
	Title         *string
	Author        *string
	PublishedDate *string
	Available     *bool
}

func (p BookPatch) Apply(b Book) Book {
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.PublishedDate != nil {
		b.PublishedDate = p.PublishedDate
	}
	if p.Available != nil {
		b.Available = *p.Available
	}
	return b
}
