package entity

import "time"

// UnrankedRank is the reserved rank sentinel for list members that carry no
// position. Unranked entries are excluded from the dense 1..N invariant.
const UnrankedRank int32 = 0

// RankedList is a user-curated ordered collection of works. A nil OwnerID
// marks the list as public/shared.
type RankedList struct {
	ID          int64
	OwnerID     *int64
	Name        LocalizedString
	Description LocalizedString

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsPublic reports whether the list has no owning user.
func (l *RankedList) IsPublic() bool {
	return l.OwnerID == nil
}

// Normalize ensures defaults & constraints before persistence.
func (l *RankedList) Normalize(now time.Time) {
	if l.Name == nil {
		l.Name = LocalizedString{}
	}
	if l.Description == nil {
		l.Description = LocalizedString{}
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
}

// ListEntry is one work's membership in a ranked list. After every settled
// mutation the ranked entries of a list occupy exactly the dense sequence
// 1..N; rank 0 means unranked.
type ListEntry struct {
	ListID int64
	WorkID int64
	Rank   int32
}

// IsRanked reports whether the entry holds a dense rank position.
func (e ListEntry) IsRanked() bool {
	return e.Rank != UnrankedRank
}
