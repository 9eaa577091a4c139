package models

import "time"

// DownloadRequest is the body of a job submission
type DownloadRequest struct {
	URL string `json:"url" validate:"required,url"`
}

// VideoResponse represents the API response for a job
type VideoResponse struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	URL          string     `json:"url,omitempty"`
	Duration     float64    `json:"duration"`
	AudioPath    *string    `json:"audio_path"`
	Status       Status     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
}

// NewVideoResponse creates a response from a video model
func NewVideoResponse(v *Video) *VideoResponse {
	resp := &VideoResponse{
		ID:           v.ID,
		Title:        v.Title,
		URL:          v.URL,
		Duration:     v.Duration,
		Status:       v.Status,
		ErrorMessage: v.ErrorMessage,
	}
	if v.AudioPath != "" {
		path := v.AudioPath
		resp.AudioPath = &path
	}
	if !v.CreatedAt.IsZero() {
		created := v.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}

type TranscriptResponse struct {
	VideoID   string    `json:"video_id"`
	Text      string    `json:"transcript"`
	Segments  []Segment `json:"segments"`
	Language  string    `json:"language"`
	WordCount int       `json:"word_count"`
	Backend   string    `json:"backend"`
	Status    Status    `json:"status"`
}

func NewTranscriptResponse(t *Transcript) *TranscriptResponse {
	segments := t.Segments
	if segments == nil {
		segments = []Segment{}
	}
	return &TranscriptResponse{
		VideoID:   t.VideoID,
		Text:      t.Text,
		Segments:  segments,
		Language:  t.Language,
		WordCount: t.WordCount,
		Backend:   t.Backend,
		Status:    StatusCompleted,
	}
}

type SummaryResponse struct {
	VideoID    string   `json:"video_id"`
	Summary    string   `json:"summary"`
	KeyPoints  []string `json:"key_points"`
	ActionPlan []string `json:"action_plan"`
	Status     Status   `json:"status"`
}

func NewSummaryResponse(s *Summary) *SummaryResponse {
	return &SummaryResponse{
		VideoID:    s.VideoID,
		Summary:    s.Summary,
		KeyPoints:  nonNil(s.KeyPoints),
		ActionPlan: nonNil(s.ActionPlan),
		Status:     StatusCompleted,
	}
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
