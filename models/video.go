package models

import (
	"time"
)

type Status string

const (
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusError      Status = "error"
)

// PendingTitle is the title a job carries until the extractor reports metadata.
const PendingTitle = "Processing..."

// Video is one URL-to-audio acquisition attempt and its persisted state.
// AudioPath is set if and only if Status is StatusCompleted.
type Video struct {
	ID           string    `json:"id"`
	URL          string    `json:"url"`
	Title        string    `json:"title"`
	Duration     float64   `json:"duration"`
	AudioPath    string    `json:"audio_path,omitempty"`
	FileSize     int64     `json:"file_size,omitempty"`
	Status       Status    `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Status check methods
func (v *Video) IsProcessing() bool { return v.Status == StatusProcessing }
func (v *Video) IsCompleted() bool  { return v.Status == StatusCompleted }
func (v *Video) IsFailed() bool     { return v.Status == StatusError }

// IsStale checks if the job has been stuck in processing for too long
func (v *Video) IsStale(timeout time.Duration) bool {
	if v.Status != StatusProcessing {
		return false
	}
	return time.Since(v.UpdatedAt) > timeout
}

// Complete records the artifact and moves the job to completed.
func (v *Video) Complete(audioPath string, size int64) {
	v.AudioPath = audioPath
	v.FileSize = size
	v.Status = StatusCompleted
	v.ErrorMessage = ""
	v.UpdatedAt = time.Now()
}

// Fail moves the job to error. The artifact path is cleared to keep the
// completed-iff-artifact invariant.
func (v *Video) Fail(message string) {
	v.AudioPath = ""
	v.FileSize = 0
	v.Status = StatusError
	v.ErrorMessage = message
	v.UpdatedAt = time.Now()
}
