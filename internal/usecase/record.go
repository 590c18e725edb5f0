package usecase

import (
	"context"
	"time"

	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/repository"
)

// RecordService merges reading state into a user's personal record for one
// work. The merge is an idempotent partial upsert: applying the same patch
// twice leaves identical stored state and never a duplicate row.
type RecordService interface {
	Apply(ctx context.Context, userID, workID int64, patch entity.RecordPatch) (*entity.PersonalRecord, error)
	Get(ctx context.Context, userID, workID int64) (*entity.PersonalRecord, error)
}

// NewRecordService wires the repository with default behaviour.
func NewRecordService(repo repository.RecordRepository) RecordService {
	return &recordService{
		repo:  repo,
		clock: time.Now,
	}
}

type recordService struct {
	repo  repository.RecordRepository
	clock func() time.Time
}

func (s *recordService) Apply(ctx context.Context, userID, workID int64, patch entity.RecordPatch) (*entity.PersonalRecord, error) {
	if patch.Rating != nil {
		if err := entity.ValidateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}

	existing, err := s.repo.Find(ctx, userID, workID)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	if existing != nil {
		existing.Apply(patch)
		existing.Normalize(now)
		return s.repo.Update(ctx, existing)
	}

	record := &entity.PersonalRecord{UserID: userID, WorkID: workID}
	record.Apply(patch)
	record.Normalize(now)
	return s.repo.Create(ctx, record)
}

func (s *recordService) Get(ctx context.Context, userID, workID int64) (*entity.PersonalRecord, error) {
	record, err := s.repo.Find(ctx, userID, workID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, entity.ErrRecordNotFound
	}
	return record, nil
}
