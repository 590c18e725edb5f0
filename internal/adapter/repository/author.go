package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/infrastructure/database/types"
	"github.com/eslsoft/shelfd/internal/repository"
)

type authorRepository struct {
	pool *pgxpool.Pool
}

// NewAuthorRepository constructs a pgx-backed author repository.
func NewAuthorRepository(pool *pgxpool.Pool) repository.AuthorRepository {
	return &authorRepository{pool: pool}
}

const authorColumns = `id, name, bio, created_at, updated_at`

func (r *authorRepository) Create(ctx context.Context, author *entity.Author) (*entity.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO authors (name, bio, name_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + authorColumns
	row := r.pool.QueryRow(ctx, q,
		toLocalizedText(author.Name),
		toLocalizedText(author.Bio),
		matchKey(author.Name),
		toPgTimestamp(author.CreatedAt),
		toPgTimestamp(author.UpdatedAt),
	)
	out, err := scanAuthor(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return out, nil
}

func (r *authorRepository) GetByID(ctx context.Context, id int64) (*entity.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `SELECT ` + authorColumns + ` FROM authors WHERE id = $1`
	out, err := scanAuthor(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if isNoRows(err) {
			return nil, entity.ErrAuthorNotFound
		}
		return nil, fmt.Errorf("get author: %w", err)
	}
	return out, nil
}

func (r *authorRepository) ListAll(ctx context.Context) ([]*entity.Author, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `SELECT ` + authorColumns + ` FROM authors ORDER BY id`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list authors: %w", err)
	}
	defer rows.Close()

	var authors []*entity.Author
	for rows.Next() {
		author, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, author)
	}
	return authors, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuthor(row rowScanner) (*entity.Author, error) {
	var (
		author entity.Author
		name   types.LocalizedText
		bio    types.LocalizedText
	)
	if err := row.Scan(&author.ID, &name, &bio, &author.CreatedAt, &author.UpdatedAt); err != nil {
		return nil, err
	}
	author.Name = fromLocalizedText(name)
	author.Bio = fromLocalizedText(bio)
	return &author, nil
}
