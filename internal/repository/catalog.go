package repository

import (
	"context"

	"github.com/eslsoft/shelfd/internal/entity"
)

// AuthorRepository defines data access for catalog authors. ListAll is the
// catalog index the reconciler matches raw author strings against.
type AuthorRepository interface {
	Create(ctx context.Context, author *entity.Author) (*entity.Author, error)
	GetByID(ctx context.Context, id int64) (*entity.Author, error)
	ListAll(ctx context.Context) ([]*entity.Author, error)
}

// WorkRepository defines data access for catalog works. Work resolution is
// always scoped to one author, so the index view is ListByAuthor.
type WorkRepository interface {
	Create(ctx context.Context, work *entity.Work) (*entity.Work, error)
	GetByID(ctx context.Context, id int64) (*entity.Work, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]*entity.Work, error)
}
