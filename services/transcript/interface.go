package transcript

import (
	"context"
	"time"

	"github.com/nijaru/yt-brief/models"
	"github.com/nijaru/yt-brief/transcription"
)

type Service interface {
	// Transcribe produces and stores a new transcript for a completed job.
	Transcribe(ctx context.Context, videoID string) (*models.Transcript, error)

	// Latest returns the most recent transcript of a job.
	Latest(ctx context.Context, videoID string) (*models.Transcript, error)
}

// Router chooses the transcription backend for a file.
type Router interface {
	Transcribe(ctx context.Context, audioPath string) (*transcription.Result, string, error)
}

// Archiver keeps a copy of every stored transcript outside the database.
type Archiver interface {
	SaveTranscript(ctx context.Context, transcript *models.Transcript) error
	// LatestTranscript returns the newest archived transcript of a video.
	LatestTranscript(ctx context.Context, videoID string) (*models.Transcript, error)
}

type Config struct {
	// ProcessTimeout bounds one transcription run.
	ProcessTimeout time.Duration `json:"process_timeout"`

	// DefaultLanguage is stored when the backend does not detect one.
	DefaultLanguage string `json:"default_language"`
}
