package repository

import (
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/infrastructure/database/types"
)

func translatePgError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return entity.ErrCatalogConflict
		}
	}
	return err
}

// matchKey is the normalized form backing the unique catalog indexes:
// lowercased, with whitespace runs collapsed to single spaces.
func matchKey(ls entity.LocalizedString) string {
	return strings.ToLower(strings.Join(strings.Fields(ls.Resolve(entity.DefaultLanguage)), " "))
}

func toLocalizedText(ls entity.LocalizedString) types.LocalizedText {
	if len(ls) == 0 {
		return types.LocalizedText{}
	}
	out := make(types.LocalizedText, len(ls))
	for lang, v := range ls {
		out[lang.Code()] = v
	}
	return out
}

func fromLocalizedText(t types.LocalizedText) entity.LocalizedString {
	out := make(entity.LocalizedString, len(t))
	for code, v := range t {
		out[entity.Language(code)] = v
	}
	return out
}

func toPgTimestamp(t time.Time) pgtype.Timestamptz {
	if t.IsZero() {
		return pgtype.Timestamptz{Valid: false}
	}
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func toPgDate(t *time.Time) pgtype.Date {
	if t == nil || t.IsZero() {
		return pgtype.Date{Valid: false}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func fromPgDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	t := d.Time
	return &t
}

func toPgFloat(v *float64) pgtype.Float8 {
	if v == nil {
		return pgtype.Float8{Valid: false}
	}
	return pgtype.Float8{Float64: *v, Valid: true}
}

func fromPgFloat(f pgtype.Float8) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func toPgInt8(v *int64) pgtype.Int8 {
	if v == nil {
		return pgtype.Int8{Valid: false}
	}
	return pgtype.Int8{Int64: *v, Valid: true}
}

func fromPgInt8(i pgtype.Int8) *int64 {
	if !i.Valid {
		return nil
	}
	v := i.Int64
	return &v
}

func isNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
