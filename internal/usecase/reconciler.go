package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/repository"
)

// ReconcilePolicy decides what happens when a raw string matches no catalog
// entry: strict rejects the row, create inserts a new entry.
type ReconcilePolicy string

const (
	PolicyStrict ReconcilePolicy = "strict"
	PolicyCreate ReconcilePolicy = "create"
)

// ParsePolicy converts an arbitrary string into a reconcile policy,
// defaulting to strict.
func ParsePolicy(s string) ReconcilePolicy {
	if strings.EqualFold(strings.TrimSpace(s), string(PolicyCreate)) {
		return PolicyCreate
	}
	return PolicyStrict
}

// Resolution is the outcome of reconciling one raw (author, title) pair.
type Resolution struct {
	AuthorID      int64
	WorkID        int64
	AuthorCreated bool
	WorkCreated   bool
}

// Reconciler resolves free-text external records against the catalog.
type Reconciler interface {
	Resolve(ctx context.Context, rawAuthor, rawTitle string, lang entity.Language) (*Resolution, error)
}

// NewReconciler wires the catalog index and matcher with the given policy.
func NewReconciler(
	authors repository.AuthorRepository,
	works repository.WorkRepository,
	matcher *Matcher,
	policy ReconcilePolicy,
	logger logrus.FieldLogger,
) Reconciler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &reconciler{
		authors: authors,
		works:   works,
		matcher: matcher,
		policy:  policy,
		logger:  logger,
	}
}

type reconciler struct {
	authors repository.AuthorRepository
	works   repository.WorkRepository
	matcher *Matcher
	policy  ReconcilePolicy
	logger  logrus.FieldLogger
}

// External exports append series/edition markers like
// "The Fellowship of the Ring (The Lord of the Rings, #1)".
var trailingAnnotation = regexp.MustCompile(`\s*[(\[][^)\]]*[)\]]\s*$`)

// CleanRaw strips trailing parenthetical/bracketed annotations and stray
// leading/trailing separators from a raw import string.
func CleanRaw(s string) string {
	s = strings.TrimSpace(s)
	for {
		stripped := trailingAnnotation.ReplaceAllString(s, "")
		if stripped == s {
			break
		}
		s = stripped
	}
	return strings.Trim(s, " \t-:;,.")
}

func (r *reconciler) Resolve(ctx context.Context, rawAuthor, rawTitle string, lang entity.Language) (*Resolution, error) {
	author := CleanRaw(rawAuthor)
	title := CleanRaw(rawTitle)
	if author == "" {
		return nil, entity.ErrInvalidAuthorName
	}
	if title == "" {
		return nil, entity.ErrInvalidWorkTitle
	}
	lang = entity.NormalizeLanguage(lang)

	authorID, authorCreated, err := r.resolveAuthor(ctx, author, lang)
	if err != nil {
		return nil, err
	}
	workID, workCreated, err := r.resolveWork(ctx, authorID, title, lang)
	if err != nil {
		return nil, err
	}
	return &Resolution{
		AuthorID:      authorID,
		WorkID:        workID,
		AuthorCreated: authorCreated,
		WorkCreated:   workCreated,
	}, nil
}

// resolveAuthor matches the raw author against the full catalog; there is no
// author scoping available at this point.
func (r *reconciler) resolveAuthor(ctx context.Context, name string, lang entity.Language) (int64, bool, error) {
	id, err := r.findAuthor(ctx, name)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, entity.ErrAuthorNotFound) || r.policy != PolicyCreate {
		return 0, false, err
	}

	author := &entity.Author{Name: entity.NewLocalizedString(lang, name)}
	author.Normalize(time.Now())
	created, err := r.authors.Create(ctx, author)
	if err == nil {
		return created.ID, true, nil
	}
	if !errors.Is(err, entity.ErrCatalogConflict) {
		return 0, false, fmt.Errorf("create author: %w", err)
	}

	// A concurrent import created the same author; its row exists now.
	r.logger.WithField("author", name).Warn("author creation conflict, re-resolving")
	id, err = r.findAuthor(ctx, name)
	if err != nil {
		return 0, false, err
	}
	return id, false, nil
}

func (r *reconciler) findAuthor(ctx context.Context, name string) (int64, error) {
	authors, err := r.authors.ListAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("list authors: %w", err)
	}
	candidates := lo.Map(authors, func(a *entity.Author, _ int) Candidate {
		return Candidate{ID: a.ID, Value: a.Name}
	})
	hit, ok := r.matcher.Match(name, candidates)
	if !ok {
		return 0, entity.ErrAuthorNotFound
	}
	return hit.ID, nil
}

// resolveWork matches the raw title against the resolved author's works
// only. An author with zero works is a valid target under create policy.
func (r *reconciler) resolveWork(ctx context.Context, authorID int64, title string, lang entity.Language) (int64, bool, error) {
	id, err := r.findWork(ctx, authorID, title)
	if err == nil {
		return id, false, nil
	}
	if !errors.Is(err, entity.ErrWorkNotFound) || r.policy != PolicyCreate {
		return 0, false, err
	}

	work := &entity.Work{
		AuthorID: authorID,
		Title:    entity.NewLocalizedString(lang, title),
	}
	work.Normalize(time.Now())
	created, err := r.works.Create(ctx, work)
	if err == nil {
		return created.ID, true, nil
	}
	if !errors.Is(err, entity.ErrCatalogConflict) {
		return 0, false, fmt.Errorf("create work: %w", err)
	}

	r.logger.WithField("title", title).Warn("work creation conflict, re-resolving")
	id, err = r.findWork(ctx, authorID, title)
	if err != nil {
		return 0, false, err
	}
	return id, false, nil
}

func (r *reconciler) findWork(ctx context.Context, authorID int64, title string) (int64, error) {
	works, err := r.works.ListByAuthor(ctx, authorID)
	if err != nil {
		return 0, fmt.Errorf("list works for author %d: %w", authorID, err)
	}
	candidates := lo.Map(works, func(w *entity.Work, _ int) Candidate {
		return Candidate{ID: w.ID, Value: w.Title}
	})
	hit, ok := r.matcher.Match(title, candidates)
	if !ok {
		return 0, entity.ErrWorkNotFound
	}
	return hit.ID, nil
}
