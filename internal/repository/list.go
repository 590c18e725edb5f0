package repository

import (
	"context"

	"github.com/eslsoft/shelfd/internal/entity"
)

// ListRepository abstracts persistence for ranked lists. Rank-mutating
// operations must be atomic per list: AddEntry assigns max(rank)+1 and the
// insert in one statement, RemoveEntry deletes and applies the renumbered
// ranks in one transaction, ReplaceRanks unranks everything and applies the
// supplied order in one transaction.
type ListRepository interface {
	Create(ctx context.Context, list *entity.RankedList) (*entity.RankedList, error)
	GetByID(ctx context.Context, id int64) (*entity.RankedList, error)
	SetOwner(ctx context.Context, id int64, ownerID *int64) error

	// ListEntries returns a list's entries ordered by rank ascending,
	// unranked entries last.
	ListEntries(ctx context.Context, listID int64) ([]entity.ListEntry, error)
	AddEntry(ctx context.Context, listID, workID int64) (int32, error)
	RemoveEntry(ctx context.Context, listID, workID int64, renumbered []int64) error
	ReplaceRanks(ctx context.Context, listID int64, orderedWorkIDs []int64) error
}
