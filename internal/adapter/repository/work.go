package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/infrastructure/database/types"
	"github.com/eslsoft/shelfd/internal/repository"
)

type workRepository struct {
	pool *pgxpool.Pool
}

// NewWorkRepository constructs a pgx-backed work repository.
func NewWorkRepository(pool *pgxpool.Pool) repository.WorkRepository {
	return &workRepository{pool: pool}
}

const workColumns = `id, author_id, title, description, isbn, cover_url, page_count, published_date, is_main_work, created_at, updated_at`

func (r *workRepository) Create(ctx context.Context, work *entity.Work) (*entity.Work, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO works (author_id, title, description, isbn, cover_url, page_count, published_date, is_main_work, title_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + workColumns
	row := r.pool.QueryRow(ctx, q,
		work.AuthorID,
		toLocalizedText(work.Title),
		toLocalizedText(work.Description),
		work.ISBN,
		work.CoverURL,
		work.PageCount,
		toPgDate(work.PublishedDate),
		work.IsMainWork,
		matchKey(work.Title),
		toPgTimestamp(work.CreatedAt),
		toPgTimestamp(work.UpdatedAt),
	)
	out, err := scanWork(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return out, nil
}

func (r *workRepository) GetByID(ctx context.Context, id int64) (*entity.Work, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `SELECT ` + workColumns + ` FROM works WHERE id = $1`
	out, err := scanWork(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if isNoRows(err) {
			return nil, entity.ErrWorkNotFound
		}
		return nil, fmt.Errorf("get work: %w", err)
	}
	return out, nil
}

func (r *workRepository) ListByAuthor(ctx context.Context, authorID int64) ([]*entity.Work, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `SELECT ` + workColumns + ` FROM works WHERE author_id = $1 ORDER BY id`
	rows, err := r.pool.Query(ctx, q, authorID)
	if err != nil {
		return nil, fmt.Errorf("list works: %w", err)
	}
	defer rows.Close()

	var works []*entity.Work
	for rows.Next() {
		work, err := scanWork(rows)
		if err != nil {
			return nil, err
		}
		works = append(works, work)
	}
	return works, rows.Err()
}

func scanWork(row rowScanner) (*entity.Work, error) {
	var (
		work        entity.Work
		title       types.LocalizedText
		description types.LocalizedText
		published   pgtype.Date
	)
	err := row.Scan(
		&work.ID,
		&work.AuthorID,
		&title,
		&description,
		&work.ISBN,
		&work.CoverURL,
		&work.PageCount,
		&published,
		&work.IsMainWork,
		&work.CreatedAt,
		&work.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	work.Title = fromLocalizedText(title)
	work.Description = fromLocalizedText(description)
	work.PublishedDate = fromPgDate(published)
	return &work, nil
}
