package usecase

import (
	"context"
	"sort"

	"github.com/samber/lo"

	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/repository"
)

// RankingService maintains the dense 1..N rank ordering over a ranked
// list's members. Rank 0 is the unranked sentinel and stays outside the
// dense sequence.
type RankingService interface {
	AddWork(ctx context.Context, listID, workID int64) (entity.ListEntry, error)
	RemoveWork(ctx context.Context, listID, workID int64) error
	// Reorder assigns 1-based ranks following the supplied order. Every
	// supplied work must be a member; members left out become unranked.
	Reorder(ctx context.Context, listID int64, orderedWorkIDs []int64) error
	SetVisibility(ctx context.Context, listID int64, ownerID *int64) error
	Entries(ctx context.Context, listID int64) ([]entity.ListEntry, error)
}

// NewRankingService wires the list repository with default behaviour.
func NewRankingService(repo repository.ListRepository) RankingService {
	return &rankingService{repo: repo}
}

type rankingService struct {
	repo repository.ListRepository
}

func (s *rankingService) AddWork(ctx context.Context, listID, workID int64) (entity.ListEntry, error) {
	if _, err := s.repo.GetByID(ctx, listID); err != nil {
		return entity.ListEntry{}, err
	}
	rank, err := s.repo.AddEntry(ctx, listID, workID)
	if err != nil {
		return entity.ListEntry{}, err
	}
	return entity.ListEntry{ListID: listID, WorkID: workID, Rank: rank}, nil
}

func (s *rankingService) RemoveWork(ctx context.Context, listID, workID int64) error {
	entries, err := s.repo.ListEntries(ctx, listID)
	if err != nil {
		return err
	}
	if !lo.ContainsBy(entries, func(e entity.ListEntry) bool { return e.WorkID == workID }) {
		return entity.ErrUnknownMember
	}

	// The survivors keep their relative order; materialize the closed gap
	// as dense ranks only at the persistence boundary.
	ranked := lo.Filter(entries, func(e entity.ListEntry, _ int) bool {
		return e.IsRanked() && e.WorkID != workID
	})
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Rank < ranked[j].Rank })
	renumbered := lo.Map(ranked, func(e entity.ListEntry, _ int) int64 { return e.WorkID })

	return s.repo.RemoveEntry(ctx, listID, workID, renumbered)
}

func (s *rankingService) Reorder(ctx context.Context, listID int64, orderedWorkIDs []int64) error {
	entries, err := s.repo.ListEntries(ctx, listID)
	if err != nil {
		return err
	}
	members := lo.SliceToMap(entries, func(e entity.ListEntry) (int64, struct{}) {
		return e.WorkID, struct{}{}
	})

	seen := make(map[int64]struct{}, len(orderedWorkIDs))
	for _, id := range orderedWorkIDs {
		if _, ok := members[id]; !ok {
			return entity.ErrUnknownMember
		}
		if _, dup := seen[id]; dup {
			return entity.ErrUnknownMember
		}
		seen[id] = struct{}{}
	}

	return s.repo.ReplaceRanks(ctx, listID, orderedWorkIDs)
}

func (s *rankingService) SetVisibility(ctx context.Context, listID int64, ownerID *int64) error {
	if _, err := s.repo.GetByID(ctx, listID); err != nil {
		return err
	}
	return s.repo.SetOwner(ctx, listID, ownerID)
}

func (s *rankingService) Entries(ctx context.Context, listID int64) ([]entity.ListEntry, error) {
	return s.repo.ListEntries(ctx, listID)
}
