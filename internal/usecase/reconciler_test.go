package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/eslsoft/shelfd/internal/entity"
)

func newTestReconciler(authors *fakeAuthorRepo, works *fakeWorkRepo, policy ReconcilePolicy) Reconciler {
	m := newTestMatcher()
	return NewReconciler(authors, works, m, policy, m.logger)
}

func seedAuthor(t *testing.T, repo *fakeAuthorRepo, name string) *entity.Author {
	t.Helper()
	author, err := repo.Create(context.Background(), &entity.Author{
		Name: entity.NewLocalizedString(entity.LanguageEnglish, name),
	})
	if err != nil {
		t.Fatalf("seed author: %v", err)
	}
	return author
}

func seedWork(t *testing.T, repo *fakeWorkRepo, authorID int64, title string) *entity.Work {
	t.Helper()
	work, err := repo.Create(context.Background(), &entity.Work{
		AuthorID: authorID,
		Title:    entity.NewLocalizedString(entity.LanguageEnglish, title),
	})
	if err != nil {
		t.Fatalf("seed work: %v", err)
	}
	return work
}

func TestResolveCreatesCatalogEntries(t *testing.T) {
	authors := newFakeAuthorRepo()
	works := newFakeWorkRepo()
	r := newTestReconciler(authors, works, PolicyCreate)

	res, err := r.Resolve(context.Background(), "George Orwell", "1984", entity.LanguageEnglish)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !res.AuthorCreated || !res.WorkCreated {
		t.Fatalf("expected author and work creation, got %+v", res)
	}

	author, err := authors.GetByID(context.Background(), res.AuthorID)
	if err != nil {
		t.Fatalf("load author: %v", err)
	}
	if got := author.Name.Resolve(entity.LanguageEnglish); got != "George Orwell" {
		t.Fatalf("author name = %q", got)
	}
	work, err := works.GetByID(context.Background(), res.WorkID)
	if err != nil {
		t.Fatalf("load work: %v", err)
	}
	if work.AuthorID != res.AuthorID {
		t.Fatalf("work linked to author %d, want %d", work.AuthorID, res.AuthorID)
	}
	if got := work.Title.Resolve(entity.LanguageEnglish); got != "1984" {
		t.Fatalf("work title = %q", got)
	}
}

func TestResolveStrictRejectsUnknownAuthor(t *testing.T) {
	r := newTestReconciler(newFakeAuthorRepo(), newFakeWorkRepo(), PolicyStrict)

	_, err := r.Resolve(context.Background(), "George Orwell", "1984", entity.LanguageEnglish)
	if !errors.Is(err, entity.ErrAuthorNotFound) {
		t.Fatalf("expected ErrAuthorNotFound, got %v", err)
	}
}

func TestResolveMatchesExistingCaseInsensitive(t *testing.T) {
	authors := newFakeAuthorRepo()
	works := newFakeWorkRepo()
	author := seedAuthor(t, authors, "Jane Austen")
	work := seedWork(t, works, author.ID, "Pride and Prejudice")
	r := newTestReconciler(authors, works, PolicyStrict)

	res, err := r.Resolve(context.Background(), "jane austen", "Pride And Prejudice", entity.LanguageEnglish)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.AuthorID != author.ID || res.WorkID != work.ID {
		t.Fatalf("resolved (%d,%d), want (%d,%d)", res.AuthorID, res.WorkID, author.ID, work.ID)
	}
	if res.AuthorCreated || res.WorkCreated {
		t.Fatalf("nothing should be created: %+v", res)
	}
}

func TestResolveStripsTrailingAnnotations(t *testing.T) {
	authors := newFakeAuthorRepo()
	works := newFakeWorkRepo()
	author := seedAuthor(t, authors, "J.R.R. Tolkien")
	work := seedWork(t, works, author.ID, "The Fellowship of the Ring")
	r := newTestReconciler(authors, works, PolicyStrict)

	res, err := r.Resolve(context.Background(),
		"J.R.R. Tolkien",
		"The Fellowship of the Ring (The Lord of the Rings, #1)",
		entity.LanguageEnglish)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.WorkID != work.ID {
		t.Fatalf("resolved work %d, want %d", res.WorkID, work.ID)
	}
}

func TestResolveBlankFieldsRejectedEarly(t *testing.T) {
	r := newTestReconciler(newFakeAuthorRepo(), newFakeWorkRepo(), PolicyCreate)

	if _, err := r.Resolve(context.Background(), "   ", "1984", entity.LanguageEnglish); !errors.Is(err, entity.ErrInvalidAuthorName) {
		t.Fatalf("blank author: got %v", err)
	}
	if _, err := r.Resolve(context.Background(), "George Orwell", "()", entity.LanguageEnglish); !errors.Is(err, entity.ErrInvalidWorkTitle) {
		t.Fatalf("blank title: got %v", err)
	}
}

func TestResolveWorkScopedToAuthor(t *testing.T) {
	authors := newFakeAuthorRepo()
	works := newFakeWorkRepo()
	austen := seedAuthor(t, authors, "Jane Austen")
	seedWork(t, works, austen.ID, "Emma")
	bronte := seedAuthor(t, authors, "Charlotte Bronte")
	r := newTestReconciler(authors, works, PolicyStrict)

	// "Emma" exists, but not under this author.
	_, err := r.Resolve(context.Background(), "Charlotte Bronte", "Emma", entity.LanguageEnglish)
	if !errors.Is(err, entity.ErrWorkNotFound) {
		t.Fatalf("expected ErrWorkNotFound, got %v", err)
	}
	_ = bronte
}

func TestResolveRetriesOnCreationConflict(t *testing.T) {
	authors := newFakeAuthorRepo()
	works := newFakeWorkRepo()
	authors.conflictOnce = true
	r := newTestReconciler(authors, works, PolicyCreate)

	res, err := r.Resolve(context.Background(), "George Orwell", "1984", entity.LanguageEnglish)
	if err != nil {
		t.Fatalf("resolve after conflict: %v", err)
	}
	if res.AuthorCreated {
		t.Fatal("author must be resolved from the concurrent writer's row, not created")
	}

	all, err := authors.ListAll(context.Background())
	if err != nil {
		t.Fatalf("list authors: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one author after conflict retry, got %d", len(all))
	}
}

func TestCleanRaw(t *testing.T) {
	cases := map[string]string{
		"  The Hobbit  ":                       "The Hobbit",
		"Dune (Dune Chronicles, #1)":           "Dune",
		"Foundation [Foundation #1] (Reissue)": "Foundation",
		"- Meditations -":                      "Meditations",
		"Emma (Oxford) (Annotated)":            "Emma",
	}
	for in, want := range cases {
		if got := CleanRaw(in); got != want {
			t.Errorf("CleanRaw(%q) = %q, want %q", in, got, want)
		}
	}
}
