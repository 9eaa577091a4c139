package models

import "time"

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

type Transcript struct {
	ID             string    `json:"id"`
	VideoID        string    `json:"video_id"`
	Text           string    `json:"transcript"`
	Language       string    `json:"language"`
	Segments       []Segment `json:"segments"`
	WordCount      int       `json:"word_count"`
	ProcessingTime float64   `json:"processing_time"`
	Backend        string    `json:"backend"`
	CreatedAt      time.Time `json:"created_at"`
}

type Summary struct {
	ID             string    `json:"id"`
	VideoID        string    `json:"video_id"`
	Summary        string    `json:"summary"`
	KeyPoints      []string  `json:"key_points"`
	ActionPlan     []string  `json:"action_plan"`
	Model          string    `json:"model"`
	ProcessingTime float64   `json:"processing_time"`
	CreatedAt      time.Time `json:"created_at"`
}
