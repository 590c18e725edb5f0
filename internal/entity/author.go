package entity

import "time"

// Author is a catalog author. Identity is immutable once created; localized
// name and bio values may be back-filled later by catalog tooling.
type Author struct {
	ID   int64
	Name LocalizedString
	Bio  LocalizedString

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Clone returns an independent copy.
func (a *Author) Clone() *Author {
	out := *a
	out.Name = a.Name.Clone()
	out.Bio = a.Bio.Clone()
	return &out
}

// Normalize ensures defaults & constraints before persistence.
func (a *Author) Normalize(now time.Time) {
	if a.Name == nil {
		a.Name = LocalizedString{}
	}
	if a.Bio == nil {
		a.Bio = LocalizedString{}
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
}
