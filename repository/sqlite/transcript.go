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

func (r *Repository) AddTranscript(ctx context.Context, transcript *models.Transcript) error {
	const op = "SQLiteRepository.AddTranscript"

	if transcript.ID == "" {
		transcript.ID = uuid.New().String()
	}
	if transcript.CreatedAt.IsZero() {
		transcript.CreatedAt = time.Now().UTC()
	}

	segments := transcript.Segments
	if segments == nil {
		segments = []models.Segment{}
	}
	encoded, err := json.Marshal(segments)
	if err != nil {
		return errors.Internal(op, err, "Failed to encode segments")
	}

	err = withRetry(ctx, r.db.config, func() error {
		_, err := r.db.statements.createTranscript.ExecContext(ctx,
			transcript.ID,
			transcript.VideoID,
			transcript.Text,
			transcript.Language,
			string(encoded),
			transcript.WordCount,
			transcript.ProcessingTime,
			transcript.Backend,
			transcript.CreatedAt.UTC(),
		)
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to save transcript")
	}
	return nil
}

func (r *Repository) LatestTranscript(ctx context.Context, videoID string) (*models.Transcript, error) {
	const op = "SQLiteRepository.LatestTranscript"

	t := &models.Transcript{}
	var segments string

	err := r.db.statements.latestTranscript.QueryRowContext(ctx, videoID).Scan(
		&t.ID,
		&t.VideoID,
		&t.Text,
		&t.Language,
		&segments,
		&t.WordCount,
		&t.ProcessingTime,
		&t.Backend,
		&t.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Transcript not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query transcript")
	}

	if err := json.Unmarshal([]byte(segments), &t.Segments); err != nil {
		return nil, errors.Internal(op, err, "Failed to decode segments")
	}
	return t, nil
}
