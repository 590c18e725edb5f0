package usecase

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/eslsoft/shelfd/internal/entity"
	"github.com/eslsoft/shelfd/internal/repository"
)

// Export column order; import mappings default to the same names so an
// export feeds straight back into an import.
var exportHeader = []string{"Title", "Author", "Read Date", "Rating", "Review"}

// FieldMapping maps logical import fields to column names in the incoming
// file. Title and Author are required; the rest are optional and simply
// absent when unmapped.
type FieldMapping struct {
	Title    string
	Author   string
	ReadDate string
	Rating   string
	Review   string
}

// DefaultFieldMapping matches the export column names.
func DefaultFieldMapping() FieldMapping {
	return FieldMapping{
		Title:    "Title",
		Author:   "Author",
		ReadDate: "Read Date",
		Rating:   "Rating",
		Review:   "Review",
	}
}

// SkipReason is the machine-readable outcome code for a row that did not
// import cleanly.
type SkipReason string

const (
	ReasonAuthorNotFound  SkipReason = "AuthorNotFound"
	ReasonWorkNotFound    SkipReason = "WorkNotFound"
	ReasonInvalidRating   SkipReason = "InvalidRating"
	ReasonDateUnparseable SkipReason = "DateUnparseable"
	ReasonRowUnparseable  SkipReason = "RowUnparseable"
)

// RowOutcome records what happened to one import row. A row with an
// unparseable date still imports; the date problem lands in Warning.
type RowOutcome struct {
	Line     int
	Imported bool
	WorkID   int64
	Reason   SkipReason
	Warning  SkipReason
}

// ImportReport summarizes a batch: N of M rows imported plus per-row detail,
// enough for a user to correct and re-submit only the failed rows.
type ImportReport struct {
	Total    int
	Imported int
	Outcomes []RowOutcome
}

// Skipped returns the outcomes of rows that did not import.
func (r *ImportReport) Skipped() []RowOutcome {
	var out []RowOutcome
	for _, o := range r.Outcomes {
		if !o.Imported {
			out = append(out, o)
		}
	}
	return out
}

// DateLayout returns the expected read-date layout for a language. German
// exports use day-first dots, everything else ISO.
func DateLayout(lang entity.Language) string {
	if lang == entity.LanguageGerman {
		return "02.01.2006"
	}
	return "2006-01-02"
}

// ImportService drives batches of external rows through reconciliation and
// record merging, and serializes a user's records back to rows. Batches are
// best effort: a failed row is reported and skipped, previously merged rows
// stay merged.
type ImportService interface {
	ImportBatch(ctx context.Context, r io.Reader, userID int64, mapping FieldMapping, lang entity.Language) (*ImportReport, error)
	ExportAll(ctx context.Context, userID int64, w io.Writer) error
}

// NewImportService wires the reconciler and merger with the catalog views
// needed for export.
func NewImportService(
	reconciler Reconciler,
	records RecordService,
	recordRepo repository.RecordRepository,
	authors repository.AuthorRepository,
	works repository.WorkRepository,
	logger logrus.FieldLogger,
) ImportService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &importService{
		reconciler: reconciler,
		records:    records,
		recordRepo: recordRepo,
		authors:    authors,
		works:      works,
		logger:     logger,
	}
}

type importService struct {
	reconciler Reconciler
	records    RecordService
	recordRepo repository.RecordRepository
	authors    repository.AuthorRepository
	works      repository.WorkRepository
	logger     logrus.FieldLogger
}

func (s *importService) ImportBatch(ctx context.Context, r io.Reader, userID int64, mapping FieldMapping, lang entity.Language) (*ImportReport, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	columns, err := bindColumns(header, mapping)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{}
	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			// The reader resumes at the next record, so a malformed line
			// is just one more skipped row.
			line++
			report.Total++
			report.Outcomes = append(report.Outcomes, RowOutcome{Line: line, Reason: ReasonRowUnparseable})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", line+1, err)
		}
		line++
		report.Total++

		outcome, err := s.importRow(ctx, row, userID, columns, lang)
		if err != nil {
			return nil, err
		}
		outcome.Line = line
		if outcome.Imported {
			report.Imported++
		}
		report.Outcomes = append(report.Outcomes, outcome)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":  userID,
		"imported": report.Imported,
		"total":    report.Total,
	}).Info("import batch finished")
	return report, nil
}

// importRow reconciles and merges a single row. Resolution and validation
// failures become row outcomes, not errors; only infrastructure failures
// abort the batch.
func (s *importService) importRow(ctx context.Context, row []string, userID int64, columns boundColumns, lang entity.Language) (RowOutcome, error) {
	resolution, err := s.reconciler.Resolve(ctx, columns.field(row, columns.author), columns.field(row, columns.title), lang)
	if err != nil {
		if reason, ok := skipReasonFor(err); ok {
			return RowOutcome{Reason: reason}, nil
		}
		return RowOutcome{}, err
	}

	patch := entity.RecordPatch{}
	outcome := RowOutcome{WorkID: resolution.WorkID}

	if raw := columns.field(row, columns.rating); raw != "" {
		rating, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return RowOutcome{Reason: ReasonInvalidRating}, nil
		}
		patch.Rating = &rating
	}
	if raw := columns.field(row, columns.review); raw != "" {
		review := raw
		patch.Review = &review
	}
	if raw := columns.field(row, columns.readDate); raw != "" {
		parsed, err := time.Parse(DateLayout(lang), raw)
		if err != nil {
			// The rest of the row still imports; only the date is lost.
			outcome.Warning = ReasonDateUnparseable
		} else {
			patch.ReadDate = &parsed
		}
	}

	if _, err := s.records.Apply(ctx, userID, resolution.WorkID, patch); err != nil {
		if errors.Is(err, entity.ErrInvalidRating) {
			return RowOutcome{Reason: ReasonInvalidRating}, nil
		}
		return RowOutcome{}, err
	}

	outcome.Imported = true
	return outcome, nil
}

func (s *importService) ExportAll(ctx context.Context, userID int64, w io.Writer) error {
	records, err := s.recordRepo.ListByUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	writer := csv.NewWriter(w)
	if err := writer.Write(exportHeader); err != nil {
		return err
	}
	for _, record := range records {
		work, err := s.works.GetByID(ctx, record.WorkID)
		if err != nil {
			return fmt.Errorf("load work %d: %w", record.WorkID, err)
		}
		author, err := s.authors.GetByID(ctx, work.AuthorID)
		if err != nil {
			return fmt.Errorf("load author %d: %w", work.AuthorID, err)
		}

		readDate := ""
		if record.ReadDate != nil {
			readDate = record.ReadDate.Format("2006-01-02")
		}
		rating := ""
		if record.Rating != nil {
			rating = strconv.FormatFloat(*record.Rating, 'f', -1, 64)
		}
		err = writer.Write([]string{
			work.Title.Resolve(entity.DefaultLanguage),
			author.Name.Resolve(entity.DefaultLanguage),
			readDate,
			rating,
			record.Review,
		})
		if err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

type boundColumns struct {
	title    int
	author   int
	readDate int
	rating   int
	review   int
}

// field returns the trimmed cell at idx, tolerating short rows and
// unmapped columns (idx < 0).
func (c boundColumns) field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func bindColumns(header []string, mapping FieldMapping) (boundColumns, error) {
	index := func(name string) int {
		if strings.TrimSpace(name) == "" {
			return -1
		}
		for i, col := range header {
			if strings.EqualFold(strings.TrimSpace(col), strings.TrimSpace(name)) {
				return i
			}
		}
		return -1
	}

	columns := boundColumns{
		title:    index(mapping.Title),
		author:   index(mapping.Author),
		readDate: index(mapping.ReadDate),
		rating:   index(mapping.Rating),
		review:   index(mapping.Review),
	}
	if columns.title < 0 {
		return columns, fmt.Errorf("title column %q not found in header: %w", mapping.Title, entity.ErrMissingColumn)
	}
	if columns.author < 0 {
		return columns, fmt.Errorf("author column %q not found in header: %w", mapping.Author, entity.ErrMissingColumn)
	}
	return columns, nil
}

func skipReasonFor(err error) (SkipReason, bool) {
	switch {
	case errors.Is(err, entity.ErrAuthorNotFound), errors.Is(err, entity.ErrInvalidAuthorName):
		return ReasonAuthorNotFound, true
	case errors.Is(err, entity.ErrWorkNotFound), errors.Is(err, entity.ErrInvalidWorkTitle):
		return ReasonWorkNotFound, true
	default:
		return "", false
	}
}
