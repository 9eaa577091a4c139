package transcription

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/nijaru/yt-brief/models"
)

// Hosted calls an OpenAI-compatible audio transcription endpoint.
type Hosted struct {
	client *openai.Client
	model  string
	apiKey string
}

func NewHosted(apiKey, baseURL, model string) *Hosted {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &Hosted{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		apiKey: apiKey,
	}
}

func (h *Hosted) Name() string { return BackendHosted }

func (h *Hosted) Available() bool { return h.apiKey != "" }

func (h *Hosted) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	resp, err := h.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    h.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []openai.TranscriptionTimestampGranularity{
			openai.TranscriptionTimestampGranularitySegment,
		},
	})
	if err != nil {
		return nil, err
	}

	segments := make([]models.Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, models.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}

	return &Result{
		Text:     strings.TrimSpace(resp.Text),
		Language: resp.Language,
		Segments: segments,
	}, nil
}
