package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/repository"
)

type recordRepository struct {
	pool *pgxpool.Pool
}

// NewRecordRepository constructs a pgx-backed personal record repository.
func NewRecordRepository(pool *pgxpool.Pool) repository.RecordRepository {
	return &recordRepository{pool: pool}
}

const recordColumns = `user_id, work_id, read_date, rating, review, created_at, updated_at`

func (r *recordRepository) Find(ctx context.Context, userID, workID int64) (*entity.PersonalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `SELECT ` + recordColumns + ` FROM user_books WHERE user_id = $1 AND work_id = $2`
	record, err := scanRecord(r.pool.QueryRow(ctx, q, userID, workID))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("find record: %w", err)
	}
	return record, nil
}

func (r *recordRepository) Create(ctx context.Context, record *entity.PersonalRecord) (*entity.PersonalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `
		INSERT INTO user_books (user_id, work_id, read_date, rating, review, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + recordColumns
	row := r.pool.QueryRow(ctx, q,
		record.UserID,
		record.WorkID,
		toPgDate(record.ReadDate),
		toPgFloat(record.Rating),
		record.Review,
		toPgTimestamp(record.CreatedAt),
		toPgTimestamp(record.UpdatedAt),
	)
	out, err := scanRecord(row)
	if err != nil {
		return nil, translatePgError(err)
	}
	return out, nil
}

func (r *recordRepository) Update(ctx context.Context, record *entity.PersonalRecord) (*entity.PersonalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `
		UPDATE user_books
		SET read_date = $3, rating = $4, review = $5, updated_at = $6
		WHERE user_id = $1 AND work_id = $2
		RETURNING ` + recordColumns
	row := r.pool.QueryRow(ctx, q,
		record.UserID,
		record.WorkID,
		toPgDate(record.ReadDate),
		toPgFloat(record.Rating),
		record.Review,
		toPgTimestamp(record.UpdatedAt),
	)
	out, err := scanRecord(row)
	if err != nil {
		if isNoRows(err) {
			return nil, entity.ErrRecordNotFound
		}
		return nil, fmt.Errorf("update record: %w", err)
	}
	return out, nil
}

func (r *recordRepository) ListByUser(ctx context.Context, userID int64) ([]*entity.PersonalRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	const q = `SELECT ` + recordColumns + ` FROM user_books WHERE user_id = $1 ORDER BY work_id`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var records []*entity.PersonalRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func scanRecord(row rowScanner) (*entity.PersonalRecord, error) {
	var (
		record   entity.PersonalRecord
		readDate pgtype.Date
		rating   pgtype.Float8
	)
	err := row.Scan(
		&record.UserID,
		&record.WorkID,
		&readDate,
		&rating,
		&record.Review,
		&record.CreatedAt,
		&record.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	record.ReadDate = fromPgDate(readDate)
	record.Rating = fromPgFloat(rating)
	return &record, nil
}
