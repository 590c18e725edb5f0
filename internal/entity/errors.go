package entity

import "errors"

// Domain errors for catalog reconciliation, record merging and rank upkeep.
var (
	ErrAuthorNotFound = errors.New("author not found")
	ErrWorkNotFound   = errors.New("work not found")
	ErrListNotFound   = errors.New("list not found")
	ErrRecordNotFound = errors.New("personal record not found")

	ErrInvalidAuthorName = errors.New("invalid author name")
	ErrInvalidWorkTitle  = errors.New("invalid work title")
	ErrInvalidRating     = errors.New("rating must be between 0 and 5 in half steps")
	ErrDateUnparseable   = errors.New("date unparseable")
	ErrMissingColumn     = errors.New("required import column missing")

	ErrAlreadyMember = errors.New("work already in list")
	ErrUnknownMember = errors.New("work not in list")

	// ErrCatalogConflict signals a duplicate-creation race on catalog
	// entries; the reconciler retries once by re-resolving.
	ErrCatalogConflict = errors.New("concurrent catalog conflict")
)
