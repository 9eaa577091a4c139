package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/nijaru/yt-brief/errors"
	"github.com/nijaru/yt-brief/models"
)

func (r *Repository) AddSummary(ctx context.Context, summary *models.Summary) error {
	const op = "SQLiteRepository.AddSummary"

	if summary.ID == "" {
		summary.ID = uuid.New().String()
	}
	if summary.CreatedAt.IsZero() {
		summary.CreatedAt = time.Now().UTC()
	}

	keyPoints, err := encodeList(summary.KeyPoints)
	if err != nil {
		return errors.Internal(op, err, "Failed to encode key points")
	}
	actionPlan, err := encodeList(summary.ActionPlan)
	if err != nil {
		return errors.Internal(op, err, "Failed to encode action plan")
	}

	err = withRetry(ctx, r.db.config, func() error {
		_, err := r.db.statements.createSummary.ExecContext(ctx,
			summary.ID,
			summary.VideoID,
			summary.Summary,
			keyPoints,
			actionPlan,
			summary.Model,
			summary.ProcessingTime,
			summary.CreatedAt.UTC(),
		)
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to save summary")
	}
	return nil
}

func (r *Repository) LatestSummary(ctx context.Context, videoID string) (*models.Summary, error) {
	const op = "SQLiteRepository.LatestSummary"

	s := &models.Summary{}
	var keyPoints, actionPlan string

	err := r.db.statements.latestSummary.QueryRowContext(ctx, videoID).Scan(
		&s.ID,
		&s.VideoID,
		&s.Summary,
		&keyPoints,
		&actionPlan,
		&s.Model,
		&s.ProcessingTime,
		&s.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Summary not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query summary")
	}

	if err := json.Unmarshal([]byte(keyPoints), &s.KeyPoints); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode key points")
	}
	if err := json.Unmarshal([]byte(actionPlan), &s.ActionPlan); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode action plan")
	}
	return s, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	return string(data), err
}
