package usecase

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/eslsoft/shelfd/internal/entity"
)

type importFixture struct {
	authors *fakeAuthorRepo
	works   *fakeWorkRepo
	records *fakeRecordRepo
	svc     ImportService
}

func newImportFixture(policy ReconcilePolicy) *importFixture {
	authors := newFakeAuthorRepo()
	works := newFakeWorkRepo()
	records := newFakeRecordRepo()
	matcher := newTestMatcher()
	reconciler := NewReconciler(authors, works, matcher, policy, matcher.logger)
	recordSvc := NewRecordService(records)
	return &importFixture{
		authors: authors,
		works:   works,
		records: records,
		svc:     NewImportService(reconciler, recordSvc, records, authors, works, matcher.logger),
	}
}

func TestImportBatchCreatePolicyScenario(t *testing.T) {
	f := newImportFixture(PolicyCreate)
	input := "Title,Author,Read Date,Rating,Review\n" +
		"1984,George Orwell,2023-05-01,5,Bleak.\n"

	report, err := f.svc.ImportBatch(context.Background(), strings.NewReader(input), 1, DefaultFieldMapping(), entity.LanguageEnglish)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Total != 1 || report.Imported != 1 {
		t.Fatalf("report = %+v", report)
	}

	authors, _ := f.authors.ListAll(context.Background())
	if len(authors) != 1 || authors[0].Name.Resolve(entity.DefaultLanguage) != "George Orwell" {
		t.Fatalf("authors = %+v", authors)
	}
	works, _ := f.works.ListByAuthor(context.Background(), authors[0].ID)
	if len(works) != 1 || works[0].Title.Resolve(entity.DefaultLanguage) != "1984" {
		t.Fatalf("works = %+v", works)
	}

	record, err := f.records.Find(context.Background(), 1, works[0].ID)
	if err != nil || record == nil {
		t.Fatalf("record missing: %v", err)
	}
	want := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	if record.ReadDate == nil || !record.ReadDate.Equal(want) {
		t.Fatalf("read date = %v, want %v", record.ReadDate, want)
	}
	if record.Rating == nil || *record.Rating != 5 {
		t.Fatalf("rating = %v", record.Rating)
	}
	if record.Review != "Bleak." {
		t.Fatalf("review = %q", record.Review)
	}
}

func TestImportBatchPartialFailureIsolation(t *testing.T) {
	f := newImportFixture(PolicyCreate)
	input := "Title,Author\n" +
		"Book One,Author One\n" +
		"Book Two,Author Two\n" +
		"Book Three,\n" +
		"Book Four,Author Four\n" +
		"Book Five,Author Five\n"

	report, err := f.svc.ImportBatch(context.Background(), strings.NewReader(input), 1, DefaultFieldMapping(), entity.LanguageEnglish)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Total != 5 || report.Imported != 4 {
		t.Fatalf("report = %+v", report)
	}

	skipped := report.Skipped()
	if len(skipped) != 1 {
		t.Fatalf("skipped = %+v", skipped)
	}
	if skipped[0].Line != 4 || skipped[0].Reason != ReasonAuthorNotFound {
		t.Fatalf("skipped row = %+v", skipped[0])
	}
	if f.records.count() != 4 {
		t.Fatalf("expected 4 merged records, got %d", f.records.count())
	}
}

func TestImportBatchMalformedLineDoesNotAbort(t *testing.T) {
	f := newImportFixture(PolicyCreate)
	input := "Title,Author\n" +
		"Book One,Author One\n" +
		"Broken\"Quote,Author Two\n" +
		"Book Three,Author Three\n"

	report, err := f.svc.ImportBatch(context.Background(), strings.NewReader(input), 1, DefaultFieldMapping(), entity.LanguageEnglish)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Total != 3 || report.Imported != 2 {
		t.Fatalf("report = %+v", report)
	}

	skipped := report.Skipped()
	if len(skipped) != 1 {
		t.Fatalf("skipped = %+v", skipped)
	}
	if skipped[0].Line != 3 || skipped[0].Reason != ReasonRowUnparseable {
		t.Fatalf("skipped row = %+v", skipped[0])
	}
	if f.records.count() != 2 {
		t.Fatalf("rows around the malformed line must import, got %d records", f.records.count())
	}
}

func TestImportBatchUnparseableDateStillImports(t *testing.T) {
	f := newImportFixture(PolicyCreate)
	input := "Title,Author,Read Date,Rating\n" +
		"Dune,Frank Herbert,sometime in May,4.5\n"

	report, err := f.svc.ImportBatch(context.Background(), strings.NewReader(input), 1, DefaultFieldMapping(), entity.LanguageEnglish)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Imported != 1 {
		t.Fatalf("report = %+v", report)
	}
	outcome := report.Outcomes[0]
	if !outcome.Imported || outcome.Warning != ReasonDateUnparseable {
		t.Fatalf("outcome = %+v", outcome)
	}

	record, err := f.records.Find(context.Background(), 1, outcome.WorkID)
	if err != nil || record == nil {
		t.Fatalf("record missing: %v", err)
	}
	if record.ReadDate != nil {
		t.Fatalf("unparseable date must stay unset, got %v", record.ReadDate)
	}
	if record.Rating == nil || *record.Rating != 4.5 {
		t.Fatalf("rating = %v", record.Rating)
	}
}

func TestImportBatchInvalidRatingSkipsRow(t *testing.T) {
	f := newImportFixture(PolicyCreate)
	input := "Title,Author,Rating\n" +
		"Dune,Frank Herbert,4.3\n"

	report, err := f.svc.ImportBatch(context.Background(), strings.NewReader(input), 1, DefaultFieldMapping(), entity.LanguageEnglish)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Imported != 0 {
		t.Fatalf("report = %+v", report)
	}
	if report.Outcomes[0].Reason != ReasonInvalidRating {
		t.Fatalf("outcome = %+v", report.Outcomes[0])
	}
	if f.records.count() != 0 {
		t.Fatal("no record should be merged for an invalid rating")
	}
}

func TestImportBatchGermanDateLayout(t *testing.T) {
	f := newImportFixture(PolicyCreate)
	input := "Titel,Autor,Gelesen\n" +
		"Der Prozess,Franz Kafka,01.05.2023\n"
	mapping := FieldMapping{Title: "Titel", Author: "Autor", ReadDate: "Gelesen"}

	report, err := f.svc.ImportBatch(context.Background(), strings.NewReader(input), 1, mapping, entity.LanguageGerman)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Imported != 1 {
		t.Fatalf("report = %+v", report)
	}

	record, err := f.records.Find(context.Background(), 1, report.Outcomes[0].WorkID)
	if err != nil || record == nil {
		t.Fatalf("record missing: %v", err)
	}
	want := time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC)
	if record.ReadDate == nil || !record.ReadDate.Equal(want) {
		t.Fatalf("read date = %v, want %v", record.ReadDate, want)
	}
}

func TestImportExportRoundTrip(t *testing.T) {
	f := newImportFixture(PolicyCreate)
	input := "Title,Author,Read Date,Rating,Review\n" +
		"1984,George Orwell,2023-05-01,5,Bleak.\n" +
		"Emma,Jane Austen,2022-11-12,3.5,Charming.\n" +
		"Dune,Frank Herbert,,,\n"

	report, err := f.svc.ImportBatch(context.Background(), strings.NewReader(input), 1, DefaultFieldMapping(), entity.LanguageEnglish)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if report.Imported != 3 {
		t.Fatalf("report = %+v", report)
	}

	var out bytes.Buffer
	if err := f.svc.ExportAll(context.Background(), 1, &out); err != nil {
		t.Fatalf("export: %v", err)
	}

	rows, err := csv.NewReader(&out).ReadAll()
	if err != nil {
		t.Fatalf("parse export: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("expected header + 3 rows, got %d", len(rows))
	}

	byTitle := make(map[string][]string)
	for _, row := range rows[1:] {
		byTitle[row[0]] = row
	}
	for title, want := range map[string][3]string{
		"1984": {"2023-05-01", "5", "Bleak."},
		"Emma": {"2022-11-12", "3.5", "Charming."},
		"Dune": {"", "", ""},
	} {
		row, ok := byTitle[title]
		if !ok {
			t.Fatalf("export misses %q: %+v", title, byTitle)
		}
		if row[2] != want[0] || row[3] != want[1] || row[4] != want[2] {
			t.Fatalf("%q round-trip mismatch: %v, want %v", title, row[2:], want)
		}
	}
}

func TestImportBatchMissingRequiredColumn(t *testing.T) {
	f := newImportFixture(PolicyCreate)
	input := "Name,Writer\nDune,Frank Herbert\n"

	_, err := f.svc.ImportBatch(context.Background(), strings.NewReader(input), 1, DefaultFieldMapping(), entity.LanguageEnglish)
	if !errors.Is(err, entity.ErrMissingColumn) {
		t.Fatalf("unmapped required columns must fail the batch upfront, got %v", err)
	}
}
