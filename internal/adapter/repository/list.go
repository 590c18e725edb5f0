package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/infrastructure/database/types"
	"github.com/eslsoft/shelfd/internal/repository"
)

type listRepository struct {
	pool *pgxpool.Pool
}

// NewListRepository constructs a pgx-backed ranked list repository. Rank
// mutations run in a single statement or transaction so a reader never sees
// a half-renumbered list.
func NewListRepository(pool *pgxpool.Pool) repository.ListRepository {
	return &listRepository{pool: pool}
}

const listColumns = `id, owner_id, name, description, created_at, updated_at`

func (r *listRepository) Create(ctx context.Context, list *entity.RankedList) (*entity.RankedList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO lists (owner_id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + listColumns
	row := r.pool.QueryRow(ctx, q,
		toPgInt8(list.OwnerID),
		toLocalizedText(list.Name),
		toLocalizedText(list.Description),
		toPgTimestamp(list.CreatedAt),
		toPgTimestamp(list.UpdatedAt),
	)
	out, err := scanList(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return out, nil
}

func (r *listRepository) GetByID(ctx context.Context, id int64) (*entity.RankedList, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `SELECT ` + listColumns + ` FROM lists WHERE id = $1`
	out, err := scanList(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if isNoRows(err) {
			return nil, entity.ErrListNotFound
		}
		return nil, fmt.Errorf("get list: %w", err)
	}
	return out, nil
}

func (r *listRepository) SetOwner(ctx context.Context, id int64, ownerID *int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	const q = `UPDATE lists SET owner_id = $2, updated_at = NOW() WHERE id = $1`
	tag, err := r.pool.Exec(ctx, q, id, toPgInt8(ownerID))
	if err != nil {
		return fmt.Errorf("set list owner: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrListNotFound
	}
	return nil
}

func (r *listRepository) ListEntries(ctx context.Context, listID int64) ([]entity.ListEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `
		SELECT list_id, work_id, rank
		FROM list_entries
		WHERE list_id = $1
		ORDER BY (rank = 0), rank, work_id`
	rows, err := r.pool.Query(ctx, q, listID)
	if err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	defer rows.Close()

	var entries []entity.ListEntry
	for rows.Next() {
		var e entity.ListEntry
		if err := rows.Scan(&e.ListID, &e.WorkID, &e.Rank); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *listRepository) AddEntry(ctx context.Context, listID, workID int64) (int32, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	// Rank assignment and insert in one statement so two concurrent adds
	// cannot claim the same position.
	const q = `
		INSERT INTO list_entries (list_id, work_id, rank)
		SELECT $1, $2, COALESCE(MAX(rank), 0) + 1
		FROM list_entries WHERE list_id = $1
		RETURNING rank`
	var rank int32
	if err := r.pool.QueryRow(ctx, q, listID, workID).Scan(&rank); err != nil {
		if errors.Is(translatePgError(err), entity.ErrCatalogConflict) {
			return 0, entity.ErrAlreadyMember
		}
		return 0, fmt.Errorf("add list entry: %w", err)
	}
	return rank, nil
}

func (r *listRepository) RemoveEntry(ctx context.Context, listID, workID int64, renumbered []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM list_entries WHERE list_id = $1 AND work_id = $2`, listID, workID)
	if err != nil {
		return fmt.Errorf("remove list entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return entity.ErrUnknownMember
	}
	if err := applyRanks(ctx, tx, listID, renumbered); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (r *listRepository) ReplaceRanks(ctx context.Context, listID int64, orderedWorkIDs []int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := applyRanks(ctx, tx, listID, orderedWorkIDs); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// applyRanks unranks every member, then assigns 1..N following the order of
// orderedWorkIDs. Members not listed stay unranked.
func applyRanks(ctx context.Context, tx pgx.Tx, listID int64, orderedWorkIDs []int64) error {
	if _, err := tx.Exec(ctx, `UPDATE list_entries SET rank = 0 WHERE list_id = $1`, listID); err != nil {
		return fmt.Errorf("reset ranks: %w", err)
	}
	const q = `
		UPDATE list_entries AS e
		SET rank = pos.ord
		FROM unnest($2::bigint[]) WITH ORDINALITY AS pos(work_id, ord)
		WHERE e.list_id = $1 AND e.work_id = pos.work_id`
	if _, err := tx.Exec(ctx, q, listID, orderedWorkIDs); err != nil {
		return fmt.Errorf("apply ranks: %w", err)
	}
	return nil
}

func scanList(row rowScanner) (*entity.RankedList, error) {
	var (
		list        entity.RankedList
		ownerID     pgtype.Int8
		name        types.LocalizedText
		description types.LocalizedText
	)
	if err := row.Scan(&list.ID, &ownerID, &name, &description, &list.CreatedAt, &list.UpdatedAt); err != nil {
		return nil, err
	}
	list.OwnerID = fromPgInt8(ownerID)
	list.Name = fromLocalizedText(name)
	list.Description = fromLocalizedText(description)
	return &list, nil
}
