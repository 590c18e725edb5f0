package entity

import "time"

// Work is a catalog work (book). Every work belongs to exactly one author.
// The bibliographic metadata is owned by catalog tooling and never mutated
// by the reconciliation engine.
type Work struct {
	ID          int64
	AuthorID    int64
	Title       LocalizedString
	Description LocalizedString

	ISBN          string
	CoverURL      string
	PageCount     int32
	PublishedDate *time.Time
	IsMainWork    bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns an independent copy.
func (w *Work) Clone() *Work {
	out := *w
	out.Title = w.Title.Clone()
	out.Description = w.Description.Clone()
	if w.PublishedDate != nil {
		d := *w.PublishedDate
		out.PublishedDate = &d
	}
	return &out
}

// Normalize ensures defaults & constraints before persistence.
func (w *Work) Normalize(now time.Time) {
	if w.Title == nil {
		w.Title = LocalizedString{}
	}
	if w.Description == nil {
		w.Description = LocalizedString{}
	}
	if w.CreatedAt.IsZero() {
		w.CreatedAt = now
	}
	w.UpdatedAt = now
}
