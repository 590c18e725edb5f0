package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/eslsoft/shelfd/internal/entity"
)

// In-memory repositories mirroring the adapter contracts, including the
// unique-key conflicts the pg layer translates.

type fakeAuthorRepo struct {
	mu           sync.RWMutex
	seq          int64
	items        map[int64]*entity.Author
	conflictOnce bool
}

func newFakeAuthorRepo() *fakeAuthorRepo {
	return &fakeAuthorRepo{items: make(map[int64]*entity.Author)}
}

func nameKey(ls entity.LocalizedString) string {
	return strings.ToLower(strings.TrimSpace(ls.Resolve(entity.DefaultLanguage)))
}

func (r *fakeAuthorRepo) Create(ctx context.Context, author *entity.Author) (*entity.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.conflictOnce {
		// Simulate a concurrent import winning the insert race.
		r.conflictOnce = false
		r.insertLocked(author.Clone())
		return nil, entity.ErrCatalogConflict
	}
	for _, existing := range r.items {
		if nameKey(existing.Name) == nameKey(author.Name) {
			return nil, entity.ErrCatalogConflict
		}
	}
	created := r.insertLocked(author.Clone())
	return created.Clone(), nil
}

func (r *fakeAuthorRepo) insertLocked(author *entity.Author) *entity.Author {
	r.seq++
	author.ID = r.seq
	r.items[author.ID] = author
	return author
}

func (r *fakeAuthorRepo) GetByID(ctx context.Context, id int64) (*entity.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	author, ok := r.items[id]
	if !ok {
		return nil, entity.ErrAuthorNotFound
	}
	return author.Clone(), nil
}

func (r *fakeAuthorRepo) ListAll(ctx context.Context) ([]*entity.Author, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*entity.Author, 0, len(r.items))
	for _, author := range r.items {
		out = append(out, author.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeWorkRepo struct {
	mu    sync.RWMutex
	seq   int64
	items map[int64]*entity.Work
}

func newFakeWorkRepo() *fakeWorkRepo {
	return &fakeWorkRepo{items: make(map[int64]*entity.Work)}
}

func (r *fakeWorkRepo) Create(ctx context.Context, work *entity.Work) (*entity.Work, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.items {
		if existing.AuthorID == work.AuthorID && nameKey(existing.Title) == nameKey(work.Title) {
			return nil, entity.ErrCatalogConflict
		}
	}
	r.seq++
	created := work.Clone()
	created.ID = r.seq
	r.items[created.ID] = created
	return created.Clone(), nil
}

func (r *fakeWorkRepo) GetByID(ctx context.Context, id int64) (*entity.Work, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	work, ok := r.items[id]
	if !ok {
		return nil, entity.ErrWorkNotFound
	}
	return work.Clone(), nil
}

func (r *fakeWorkRepo) ListByAuthor(ctx context.Context, authorID int64) ([]*entity.Work, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.Work
	for _, work := range r.items {
		if work.AuthorID == authorID {
			out = append(out, work.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type recordKey struct {
	userID int64
	workID int64
}

type fakeRecordRepo struct {
	mu    sync.RWMutex
	items map[recordKey]*entity.PersonalRecord
}

func newFakeRecordRepo() *fakeRecordRepo {
	return &fakeRecordRepo{items: make(map[recordKey]*entity.PersonalRecord)}
}

func (r *fakeRecordRepo) Find(ctx context.Context, userID, workID int64) (*entity.PersonalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	record, ok := r.items[recordKey{userID, workID}]
	if !ok {
		return nil, nil
	}
	return cloneRecord(record), nil
}

func (r *fakeRecordRepo) Create(ctx context.Context, record *entity.PersonalRecord) (*entity.PersonalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recordKey{record.UserID, record.WorkID}
	if _, ok := r.items[key]; ok {
		return nil, entity.ErrCatalogConflict
	}
	r.items[key] = cloneRecord(record)
	return cloneRecord(record), nil
}

func (r *fakeRecordRepo) Update(ctx context.Context, record *entity.PersonalRecord) (*entity.PersonalRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recordKey{record.UserID, record.WorkID}
	if _, ok := r.items[key]; !ok {
		return nil, entity.ErrRecordNotFound
	}
	r.items[key] = cloneRecord(record)
	return cloneRecord(record), nil
}

func (r *fakeRecordRepo) ListByUser(ctx context.Context, userID int64) ([]*entity.PersonalRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*entity.PersonalRecord
	for _, record := range r.items {
		if record.UserID == userID {
			out = append(out, cloneRecord(record))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkID < out[j].WorkID })
	return out, nil
}

func (r *fakeRecordRepo) count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

func cloneRecord(record *entity.PersonalRecord) *entity.PersonalRecord {
	out := *record
	if record.ReadDate != nil {
		d := *record.ReadDate
		out.ReadDate = &d
	}
	if record.Rating != nil {
		v := *record.Rating
		out.Rating = &v
	}
	return &out
}

type fakeListRepo struct {
	mu      sync.RWMutex
	seq     int64
	lists   map[int64]*entity.RankedList
	entries map[int64][]entity.ListEntry
}

func newFakeListRepo() *fakeListRepo {
	return &fakeListRepo{
		lists:   make(map[int64]*entity.RankedList),
		entries: make(map[int64][]entity.ListEntry),
	}
}

func (r *fakeListRepo) Create(ctx context.Context, list *entity.RankedList) (*entity.RankedList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	copy := *list
	copy.ID = r.seq
	r.lists[copy.ID] = &copy
	return &copy, nil
}

func (r *fakeListRepo) GetByID(ctx context.Context, id int64) (*entity.RankedList, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list, ok := r.lists[id]
	if !ok {
		return nil, entity.ErrListNotFound
	}
	copy := *list
	return &copy, nil
}

func (r *fakeListRepo) SetOwner(ctx context.Context, id int64, ownerID *int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list, ok := r.lists[id]
	if !ok {
		return entity.ErrListNotFound
	}
	if ownerID == nil {
		list.OwnerID = nil
	} else {
		owner := *ownerID
		list.OwnerID = &owner
	}
	return nil
}

func (r *fakeListRepo) ListEntries(ctx context.Context, listID int64) ([]entity.ListEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := append([]entity.ListEntry(nil), r.entries[listID]...)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].IsRanked() != entries[j].IsRanked() {
			return entries[i].IsRanked()
		}
		if entries[i].Rank != entries[j].Rank {
			return entries[i].Rank < entries[j].Rank
		}
		return entries[i].WorkID < entries[j].WorkID
	})
	return entries, nil
}

func (r *fakeListRepo) AddEntry(ctx context.Context, listID, workID int64) (int32, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var max int32
	for _, e := range r.entries[listID] {
		if e.WorkID == workID {
			return 0, entity.ErrAlreadyMember
		}
		if e.Rank > max {
			max = e.Rank
		}
	}
	rank := max + 1
	r.entries[listID] = append(r.entries[listID], entity.ListEntry{ListID: listID, WorkID: workID, Rank: rank})
	return rank, nil
}

func (r *fakeListRepo) RemoveEntry(ctx context.Context, listID, workID int64, renumbered []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries[listID]
	kept := entries[:0]
	removed := false
	for _, e := range entries {
		if e.WorkID == workID {
			removed = true
			continue
		}
		kept = append(kept, e)
	}
	if !removed {
		return entity.ErrUnknownMember
	}
	r.entries[listID] = kept
	r.applyRanksLocked(listID, renumbered)
	return nil
}

func (r *fakeListRepo) ReplaceRanks(ctx context.Context, listID int64, orderedWorkIDs []int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := r.entries[listID]
	for i := range entries {
		entries[i].Rank = entity.UnrankedRank
	}
	r.applyRanksLocked(listID, orderedWorkIDs)
	return nil
}

func (r *fakeListRepo) applyRanksLocked(listID int64, orderedWorkIDs []int64) {
	entries := r.entries[listID]
	for pos, workID := range orderedWorkIDs {
		for i := range entries {
			if entries[i].WorkID == workID {
				entries[i].Rank = int32(pos + 1)
			}
		}
	}
}
