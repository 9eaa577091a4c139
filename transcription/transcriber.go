// Package transcription turns an audio file into timed text using a hosted
// Whisper API or a local whisper installation.
package transcription

import (
	"context"

	"github.com/nijaru/yt-brief/models"
)

const (
	BackendHosted = "hosted"
	BackendLocal  = "local"
)

// Result is the backend-neutral transcription output.
type Result struct {
	Text     string
	Language string
	Segments []models.Segment
}

type Transcriber interface {
	Name() string
	// Available reports whether the backend is configured and can be invoked.
	Available() bool
	Transcribe(ctx context.Context, audioPath string) (*Result, error)
}
