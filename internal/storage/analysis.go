package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/inovaitive/revu/internal/core/domain"
	coreerrors "github.com/inovaitive/revu/internal/core/errors"
)

const analysisColumns = `a.id, a.feedback_id, a.sentiment, a.sentiment_score, a.categories, a.themes,
	a.priority_score, a.urgency, a.insights, a.churn_risk, a.competitor_mentions, a.extracted_entities,
	a.confidence_score, a.requires_review, a.reviewed_by, a.reviewed_at, a.ai_model_version,
	a.created_at, a.updated_at`

// rowQuerier is satisfied by both the pool and a transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// FindAnalysis loads the analysis for a feedback item.
func (db *DB) FindAnalysis(ctx context.Context, feedbackID string) (*domain.Analysis, error) {
	return findAnalysis(ctx, db.Pool, feedbackID)
}

func findAnalysis(ctx context.Context, q rowQuerier, feedbackID string) (*domain.Analysis, error) {
	row := q.QueryRow(ctx, `
		SELECT `+analysisColumns+`
		FROM analysis a
		WHERE a.feedback_id = $1
	`, toUUID(feedbackID))

	a, err := scanAnalysis(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, coreerrors.ErrAnalysisNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("query analysis: %w", err)
	}

	return a, nil
}

// saveAnalysis inserts or replaces the analysis for a.FeedbackID in one
// statement. On conflict the stored ID and CreatedAt win and are copied back
// into a.
func saveAnalysis(ctx context.Context, q rowQuerier, a *domain.Analysis) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}

	insights, err := json.Marshal(a.Insights)
	if err != nil {
		return fmt.Errorf("marshal insights: %w", err)
	}

	entities, err := json.Marshal(a.ExtractedEntities)
	if err != nil {
		return fmt.Errorf("marshal entities: %w", err)
	}

	var id pgtype.UUID

	var createdAt, updatedAt time.Time

	err = q.QueryRow(ctx, `
		INSERT INTO analysis (id, feedback_id, sentiment, sentiment_score, categories, themes,
		                      priority_score, urgency, insights, churn_risk, competitor_mentions,
		                      extracted_entities, confidence_score, requires_review, reviewed_by,
		                      reviewed_at, ai_model_version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (feedback_id) DO UPDATE SET
			sentiment = EXCLUDED.sentiment,
			sentiment_score = EXCLUDED.sentiment_score,
			categories = EXCLUDED.categories,
			themes = EXCLUDED.themes,
			priority_score = EXCLUDED.priority_score,
			urgency = EXCLUDED.urgency,
			insights = EXCLUDED.insights,
			churn_risk = EXCLUDED.churn_risk,
			competitor_mentions = EXCLUDED.competitor_mentions,
			extracted_entities = EXCLUDED.extracted_entities,
			confidence_score = EXCLUDED.confidence_score,
			requires_review = EXCLUDED.requires_review,
			reviewed_by = EXCLUDED.reviewed_by,
			reviewed_at = EXCLUDED.reviewed_at,
			ai_model_version = EXCLUDED.ai_model_version,
			updated_at = now()
		RETURNING id, created_at, updated_at
	`,
		toUUID(a.ID),
		toUUID(a.FeedbackID),
		string(a.Sentiment),
		a.SentimentScore,
		nonNil(a.Categories),
		nonNil(a.Themes),
		a.PriorityScore,
		string(a.Urgency),
		insights,
		a.ChurnRisk,
		nonNil(a.CompetitorMentions),
		entities,
		a.ConfidenceScore,
		a.RequiresReview,
		toUUID(a.ReviewedBy),
		toTimestamptzPtr(a.ReviewedAt),
		toText(a.AIModelVersion),
	).Scan(&id, &createdAt, &updatedAt)
	if err != nil {
		return fmt.Errorf("upsert analysis: %w", err)
	}

	a.ID = fromUUID(id)
	a.CreatedAt = createdAt
	a.UpdatedAt = updatedAt

	return nil
}

// ListPendingReview returns analyses of orgID that still need a human,
// highest priority first.
func (db *DB) ListPendingReview(ctx context.Context, orgID string, limit int) ([]domain.Analysis, error) {
	if limit <= 0 {
		limit = DefaultPendingReviewLimit
	}

	if limit > MaxPendingReviewLimit {
		limit = MaxPendingReviewLimit
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT `+analysisColumns+`
		FROM analysis a
		JOIN feedback f ON f.id = a.feedback_id
		WHERE f.organization_id = $1
		  AND a.requires_review = true
		  AND a.reviewed_by IS NULL
		ORDER BY a.priority_score DESC, a.created_at ASC
		LIMIT $2
	`, toUUID(orgID), limit)
	if err != nil {
		return nil, fmt.Errorf("query pending review: %w", err)
	}
	defer rows.Close()

	var res []domain.Analysis

	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, fmt.Errorf("scan analysis row: %w", err)
		}

		res = append(res, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate analysis rows: %w", err)
	}

	return res, nil
}

func scanAnalysis(row pgx.Row) (*domain.Analysis, error) {
	var (
		id, feedbackID, reviewedBy pgtype.UUID
		sentiment, urgency         string
		sentimentScore, confidence float64
		categories, themes         []string
		competitors                []string
		priority                   int32
		insightsRaw, entitiesRaw   []byte
		churnRisk, requiresReview  bool
		reviewedAt                 pgtype.Timestamptz
		modelVersion               pgtype.Text
		createdAt, updatedAt       time.Time
	)

	if err := row.Scan(&id, &feedbackID, &sentiment, &sentimentScore, &categories, &themes,
		&priority, &urgency, &insightsRaw, &churnRisk, &competitors, &entitiesRaw,
		&confidence, &requiresReview, &reviewedBy, &reviewedAt, &modelVersion,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	a := &domain.Analysis{
		ID:                 fromUUID(id),
		FeedbackID:         fromUUID(feedbackID),
		Sentiment:          domain.Sentiment(sentiment),
		SentimentScore:     sentimentScore,
		Categories:         categories,
		Themes:             themes,
		PriorityScore:      int(priority),
		Urgency:            domain.Urgency(urgency),
		ChurnRisk:          churnRisk,
		CompetitorMentions: competitors,
		ConfidenceScore:    confidence,
		RequiresReview:     requiresReview,
		ReviewedBy:         fromUUID(reviewedBy),
		ReviewedAt:         fromTimestamptzPtr(reviewedAt),
		AIModelVersion:     fromText(modelVersion),
		CreatedAt:          createdAt,
		UpdatedAt:          updatedAt,
	}

	if len(insightsRaw) > 0 {
		if err := json.Unmarshal(insightsRaw, &a.Insights); err != nil {
			return nil, fmt.Errorf("decode insights: %w", err)
		}
	}

	if len(entitiesRaw) > 0 {
		if err := json.Unmarshal(entitiesRaw, &a.ExtractedEntities); err != nil {
			return nil, fmt.Errorf("decode entities: %w", err)
		}
	}

	return a, nil
}
