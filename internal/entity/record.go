package entity

import (
	"math"
	"time"
)

// Rating bounds. Ratings move in half steps: 0, 0.5, ... 5.
const (
	RatingMin  = 0.0
	RatingMax  = 5.0
	RatingStep = 0.5
)

// PersonalRecord is a user's private reading state for one work. Identity is
// the (UserID, WorkID) pair; there is never more than one record per pair.
// A set ReadDate is the "read" signal, a nil ReadDate means unread.
type PersonalRecord struct {
	UserID   int64
	WorkID   int64
	ReadDate *time.Time
	Rating   *float64
	Review   string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsRead reports whether the record marks the work as read.
func (r *PersonalRecord) IsRead() bool {
	return r.ReadDate != nil
}

// Normalize ensures defaults & constraints before persistence.
func (r *PersonalRecord) Normalize(now time.Time) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = now
	}
	r.UpdatedAt = now
}

// RecordPatch is a partial update of a personal record. Nil fields are left
// untouched; ClearReadDate removes the read date (marking the work unread)
// and wins over ReadDate.
type RecordPatch struct {
	ReadDate      *time.Time
	ClearReadDate bool
	Rating        *float64
	Review        *string
}

// Apply overwrites the record's fields with the patch's supplied fields.
func (r *PersonalRecord) Apply(patch RecordPatch) {
	if patch.ClearReadDate {
		r.ReadDate = nil
	} else if patch.ReadDate != nil {
		d := *patch.ReadDate
		r.ReadDate = &d
	}
	if patch.Rating != nil {
		v := *patch.Rating
		r.Rating = &v
	}
	if patch.Review != nil {
		r.Review = *patch.Review
	}
}

// ValidateRating rejects ratings outside [0, 5] or off the half-step grid.
// The check runs on tenths to avoid float equality traps.
func ValidateRating(rating float64) error {
	if rating < RatingMin || rating > RatingMax {
		return ErrInvalidRating
	}
	tenths := math.Round(rating * 10)
	if math.Abs(rating*10-tenths) > 1e-9 || int64(tenths)%5 != 0 {
		return ErrInvalidRating
	}
	return nil
}
