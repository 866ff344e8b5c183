package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/inovaitive/revu/internal/core/domain"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
)

const feedbackColumns = `id, organization_id, source, content, author_name, author_email,
	rating, feedback_date, raw_metadata, ingested_at, created_at, updated_at`

const feedbackColumnsF = `f.id, f.organization_id, f.source, f.content, f.author_name, f.author_email,
	f.rating, f.feedback_date, f.raw_metadata, f.ingested_at, f.created_at, f.updated_at`

// CreateFeedback inserts f and fills in its ID and timestamps.
func (db *DB) CreateFeedback(ctx context.Context, f *domain.Feedback) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}

	var ingestedAt, createdAt, updatedAt pgtype.Timestamptz

	err := db.Pool.QueryRow(ctx, `
		INSERT INTO feedback (id, organization_id, source, content, author_name, author_email,
		                      rating, feedback_date, raw_metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ingested_at, created_at, updated_at
	`,
		toUUID(f.ID),
		toUUID(f.OrganizationID),
		SanitizeUTF8(f.Source),
		SanitizeUTF8(f.Content),
		toText(f.AuthorName),
		toText(f.AuthorEmail),
		toFloat8Ptr(f.Rating),
		toTimestamptzPtr(f.FeedbackDate),
		f.RawMetadata,
	).Scan(&ingestedAt, &createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("insert feedback: %w", err)
	}

	f.IngestedAt = fromTimestamptz(ingestedAt)
	f.CreatedAt = fromTimestamptz(createdAt)
	f.UpdatedAt = fromTimestamptz(updatedAt)

	return nil
}

// FindFeedback loads a feedback item owned by orgID.
// Missing and foreign items both yield ErrFeedbackNotFound.
func (db *DB) FindFeedback(ctx context.Context, orgID, id string) (*domain.Feedback, error) {
	row := db.Pool.QueryRow(ctx, `
		SELECT `+feedbackColumns+`
		FROM feedback
		WHERE id = $1 AND organization_id = $2
	`, toUUID(id), toUUID(orgID))

	f, err := scanFeedback(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, coreerrors.ErrFeedbackNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("query feedback: %w", err)
	}

	return f, nil
}

// DeleteFeedback removes a feedback item and, by cascade, its analysis.
func (db *DB) DeleteFeedback(ctx context.Context, orgID, id string) error {
	tag, err := db.Pool.Exec(ctx, `
		DELETE FROM feedback WHERE id = $1 AND organization_id = $2
	`, toUUID(id), toUUID(orgID))
	if err != nil {
		return fmt.Errorf("delete feedback: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return coreerrors.ErrFeedbackNotFound
	}

	return nil
}

// ListUnanalyzedFeedback returns the oldest feedback items across all
// organizations that have no analysis yet.
func (db *DB) ListUnanalyzedFeedback(ctx context.Context, limit int) ([]domain.Feedback, error) {
	if limit <= 0 {
		limit = DefaultUnanalyzedLimit
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT `+feedbackColumnsF+`
		FROM feedback f
		LEFT JOIN analysis a ON a.feedback_id = f.id
		WHERE a.id IS NULL
		ORDER BY f.ingested_at ASC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query unanalyzed feedback: %w", err)
	}
	defer rows.Close()

	var res []domain.Feedback

	for rows.Next() {
		f, err := scanFeedback(rows)
		if err != nil {
			return nil, fmt.Errorf("scan feedback row: %w", err)
		}

		res = append(res, *f)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feedback rows: %w", err)
	}

	return res, nil
}

// CountUnanalyzedFeedback reports the size of the analysis backlog.
func (db *DB) CountUnanalyzedFeedback(ctx context.Context) (int, error) {
	var n int64

	err := db.Pool.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM feedback f
		LEFT JOIN analysis a ON a.feedback_id = f.id
		WHERE a.id IS NULL
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unanalyzed feedback: %w", err)
	}

	return int(n), nil
}

func scanFeedback(row pgx.Row) (*domain.Feedback, error) {
	var (
		id, orgID                        pgtype.UUID
		source, content                  string
		authorName, authorEmail          pgtype.Text
		rating                           pgtype.Float8
		feedbackDate                     pgtype.Timestamptz
		rawMetadata                      []byte
		ingestedAt, createdAt, updatedAt time.Time
	)

	if err := row.Scan(&id, &orgID, &source, &content, &authorName, &authorEmail,
		&rating, &feedbackDate, &rawMetadata, &ingestedAt, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	return &domain.Feedback{
		ID:             fromUUID(id),
		OrganizationID: fromUUID(orgID),
		Source:         source,
		Content:        content,
		AuthorName:     fromText(authorName),
		AuthorEmail:    fromText(authorEmail),
		Rating:         fromFloat8Ptr(rating),
		FeedbackDate:   fromTimestamptzPtr(feedbackDate),
		RawMetadata:    rawMetadata,
		IngestedAt:     ingestedAt,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}
