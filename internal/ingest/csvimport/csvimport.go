// Package csvimport loads feedback items from CSV files.
//
// Expected columns (header row required, any order, case-insensitive):
//
//	content        required
//	author_name    optional
//	author_email   optional
//	rating         optional, 0..5; unparsable or out of range values are dropped
//	feedback_date  optional, any common date layout; defaults to the import time
//	source         optional, defaults to "csv"
package csvimport

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/rs/zerolog"

	"github.com/inovaitive/revu/internal/core/domain"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
	"github.com/inovaitive/revu/internal/platform/observability"
)

// Column names.
const (
	ColContent      = "content"
	ColAuthorName   = "author_name"
	ColAuthorEmail  = "author_email"
	ColRating       = "rating"
	ColFeedbackDate = "feedback_date"
	ColSource       = "source"
)

// DefaultSource is used for rows without a source value.
const DefaultSource = "csv"

const (
	maxRowErrors = 10
	// headerRows offsets row numbers so they match a spreadsheet view.
	headerRows = 1

	statusImported = "imported"
	statusRejected = "rejected"

	errContentRequired = "content is required"
	utf8BOM            = "\ufeff"
)

// Columns lists the template header in order.
var Columns = []string{ColContent, ColAuthorName, ColAuthorEmail, ColRating, ColFeedbackDate, ColSource}

// RowError reports why one CSV row was not imported. Row is 1-based and
// counts the header.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// Result summarizes an import. Errors holds at most ten samples.
type Result struct {
	SuccessCount int        `json:"success_count"`
	ErrorCount   int        `json:"error_count"`
	Total        int        `json:"total"`
	Errors       []RowError `json:"errors"`
}

func (r *Result) fail(row int, msg string) {
	r.ErrorCount++

	if len(r.Errors) < maxRowErrors {
		r.Errors = append(r.Errors, RowError{Row: row, Error: msg})
	}
}

// FeedbackStore persists imported feedback.
type FeedbackStore interface {
	CreateFeedback(ctx context.Context, f *domain.Feedback) error
}

// Importer parses CSV input and stores each valid row.
type Importer struct {
	store  FeedbackStore
	logger *zerolog.Logger
	now    func() time.Time
}

// New creates an Importer.
func New(store FeedbackStore, logger *zerolog.Logger) *Importer {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	return &Importer{store: store, logger: logger, now: time.Now}
}

// Import reads r and creates feedback items for orgID. Row level problems
// are reported in the result; a missing header or content column fails the
// whole import with ErrInvalidInput.
func (im *Importer) Import(ctx context.Context, orgID string, r io.Reader) (Result, error) {
	rows, res, err := Parse(r, orgID, im.now())
	if err != nil {
		return Result{}, err
	}

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("import canceled: %w", err)
		}

		fb := row.Feedback
		if err := im.store.CreateFeedback(ctx, &fb); err != nil {
			im.logger.Error().Err(err).Int("row", row.Line).Msg("store imported feedback")
			res.fail(row.Line, "failed to store feedback")
			observability.CSVImportRows.WithLabelValues(statusRejected).Inc()

			continue
		}

		res.SuccessCount++
		observability.CSVImportRows.WithLabelValues(statusImported).Inc()
		observability.FeedbackIngested.WithLabelValues(fb.Source).Inc()
	}

	im.logger.Info().
		Int("total", res.Total).
		Int("imported", res.SuccessCount).
		Int("errors", res.ErrorCount).
		Msg("csv import finished")

	return res, nil
}

// Row is a parsed, valid CSV row.
type Row struct {
	Line     int
	Feedback domain.Feedback
}

// Parse reads every record of r. Valid rows are returned for storage;
// invalid ones are already counted in the returned Result.
func Parse(r io.Reader, orgID string, now time.Time) ([]Row, Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, Result{}, fmt.Errorf("%w: csv file is empty", coreerrors.ErrInvalidInput)
	}

	if err != nil {
		return nil, Result{}, fmt.Errorf("%w: read csv header: %v", coreerrors.ErrInvalidInput, err)
	}

	cols := indexColumns(header)
	if _, ok := cols[ColContent]; !ok {
		return nil, Result{}, fmt.Errorf("%w: csv must have a %q column", coreerrors.ErrInvalidInput, ColContent)
	}

	res := Result{Errors: []RowError{}}

	var rows []Row

	for i := 1; ; i++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		line := i + headerRows
		res.Total++

		if err != nil {
			var perr *csv.ParseError
			if !errors.As(err, &perr) {
				return nil, Result{}, fmt.Errorf("read csv: %w", err)
			}

			res.fail(line, perr.Err.Error())
			observability.CSVImportRows.WithLabelValues(statusRejected).Inc()

			continue
		}

		fb, msg := parseRecord(record, cols, orgID, now)
		if msg != "" {
			res.fail(line, msg)
			observability.CSVImportRows.WithLabelValues(statusRejected).Inc()

			continue
		}

		rows = append(rows, Row{Line: line, Feedback: fb})
	}

	return rows, res, nil
}

func indexColumns(header []string) map[string]int {
	cols := make(map[string]int, len(header))

	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, utf8BOM)
		}

		name := strings.ToLower(strings.TrimSpace(h))
		if _, dup := cols[name]; !dup && name != "" {
			cols[name] = i
		}
	}

	return cols
}

func parseRecord(record []string, cols map[string]int, orgID string, now time.Time) (domain.Feedback, string) {
	get := func(col string) string {
		i, ok := cols[col]
		if !ok || i >= len(record) {
			return ""
		}

		return strings.TrimSpace(record[i])
	}

	content := get(ColContent)
	if content == "" {
		return domain.Feedback{}, errContentRequired
	}

	source := get(ColSource)
	if source == "" {
		source = DefaultSource
	}

	date := ParseDate(get(ColFeedbackDate))
	if date == nil {
		date = &now
	}

	return domain.Feedback{
		OrganizationID: orgID,
		Source:         source,
		Content:        content,
		AuthorName:     get(ColAuthorName),
		AuthorEmail:    get(ColAuthorEmail),
		Rating:         ParseRating(get(ColRating)),
		FeedbackDate:   date,
	}, ""
}

// ParseRating returns nil for empty, unparsable or out of range values.
func ParseRating(s string) *float64 {
	if s == "" {
		return nil
	}

	r, err := strconv.ParseFloat(s, 64)
	if err != nil || !domain.ValidRating(r) {
		return nil
	}

	return &r
}

// ParseDate accepts any layout dateparse understands and returns nil
// otherwise.
func ParseDate(s string) *time.Time {
	if s == "" {
		return nil
	}

	t, err := dateparse.ParseAny(s)
	if err != nil {
		return nil
	}

	return &t
}

// WriteTemplate writes a sample CSV with every supported column.
func WriteTemplate(w io.Writer) error {
	cw := csv.NewWriter(w)

	records := [][]string{
		Columns,
		{"Great product, very helpful!", "John Doe", "john@example.com", "5.0", "2025-11-01T10:00:00", "g2"},
		{"Having issues with performance", "Jane Smith", "jane@example.com", "3.5", "2025-11-15T14:30:00", "capterra"},
	}

	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("write csv template: %w", err)
	}

	return nil
}
