package repository

import (
	"context"
	"time"

	"github.com/nijaru/yt-brief/models"
)

// VideoRepository is the durable record of each job. Writes are visible to
// the next read of the same id.
type VideoRepository interface {
	Create(ctx context.Context, video *models.Video) error
	Update(ctx context.Context, video *models.Video) error
	Find(ctx context.Context, id string) (*models.Video, error)
	FindByURL(ctx context.Context, url string) (*models.Video, error)
	// List returns jobs newest first; limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*models.Video, error)
	// Delete removes the job together with its transcripts and summaries.
	Delete(ctx context.Context, id string) error
	// FailStale moves processing jobs not updated since before cutoff to error.
	FailStale(ctx context.Context, cutoff time.Time, message string) (int64, error)
}

type TranscriptRepository interface {
	AddTranscript(ctx context.Context, transcript *models.Transcript) error
	// LatestTranscript returns the most recently created transcript of a job.
	LatestTranscript(ctx context.Context, videoID string) (*models.Transcript, error)
}

type SummaryRepository interface {
	AddSummary(ctx context.Context, summary *models.Summary) error
	LatestSummary(ctx context.Context, videoID string) (*models.Summary, error)
}
