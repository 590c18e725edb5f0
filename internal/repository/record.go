package repository

import (
	"context"

	"github.com/eslsoft/shelfd/internal/entity"
)

// RecordRepository abstracts persistence for personal reading records.
// Find returns (nil, nil) when no record exists for the pair; the merger
// decides between create and update.
type RecordRepository interface {
	Find(ctx context.Context, userID, workID int64) (*entity.PersonalRecord, error)
	Create(ctx context.Context, record *entity.PersonalRecord) (*entity.PersonalRecord, error)
	Update(ctx context.Context, record *entity.PersonalRecord) (*entity.PersonalRecord, error)
	ListByUser(ctx context.Context, userID int64) ([]*entity.PersonalRecord, error)
}
