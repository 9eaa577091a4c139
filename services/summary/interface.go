package summary

import (
	"context"
	"time"

	"github.com/nijaru/yt-brief/models"
)

type Service interface {
	// Summarize builds and stores a summary of the latest transcript of a job.
	Summarize(ctx context.Context, videoID string) (*models.Summary, error)

	// Latest returns the most recent summary of a job.
	Latest(ctx context.Context, videoID string) (*models.Summary, error)
}

// Summarizer sends a prompt to a language model and returns its raw answer.
type Summarizer interface {
	Model() string
	Available() bool
	Complete(ctx context.Context, system, prompt string) (string, error)
}

type Repository interface {
	Find(ctx context.Context, id string) (*models.Video, error)
	LatestTranscript(ctx context.Context, videoID string) (*models.Transcript, error)
	AddSummary(ctx context.Context, summary *models.Summary) error
	LatestSummary(ctx context.Context, videoID string) (*models.Summary, error)
}

type Config struct {
	// FallbackLength caps the summary taken from a non-JSON answer.
	FallbackLength int

	// ProcessTimeout bounds one model call and the write that follows it.
	ProcessTimeout time.Duration
}
