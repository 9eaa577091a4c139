package summary

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-brief/errors"
	"github.com/nijaru/yt-brief/models"
)

const systemPrompt = "You are an expert at analyzing video content and creating actionable insights. Always respond with valid JSON."

const userPrompt = `Please analyze the following video transcript and provide:
1. A comprehensive summary (2-3 paragraphs)
2. Key points (5-7 bullet points)
3. Action plan (5-7 actionable steps)

Video Title: %s

Transcript:
%s

Please format your response as JSON with the following structure:
{
    "summary": "comprehensive summary here",
    "key_points": ["point 1", "point 2", ...],
    "action_plan": ["action 1", "action 2", ...]
}`

var (
	defaultKeyPoints  = []string{"Analysis completed - see summary for details"}
	defaultActionPlan = []string{"Review the summary and create personalized action items"}
)

type service struct {
	repo       Repository
	summarizer Summarizer
	config     Config
	logger     *logrus.Logger
}

func NewService(
	repo Repository,
	summarizer Summarizer,
	config Config,
	logger *logrus.Logger,
) Service {
	if config.FallbackLength <= 0 {
		config.FallbackLength = 500
	}
	return &service{
		repo:       repo,
		summarizer: summarizer,
		config:     config,
		logger:     logger,
	}
}

func (s *service) Summarize(ctx context.Context, videoID string) (*models.Summary, error) {
	const op = "SummaryService.Summarize"

	if videoID == "" {
		return nil, errors.InvalidInput(op, nil, "video_id is required")
	}

	video, err := s.repo.Find(ctx, videoID)
	if err != nil {
		return nil, err
	}
	transcript, err := s.repo.LatestTranscript(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if s.summarizer == nil || !s.summarizer.Available() {
		return nil, errors.SummaryFailure(op, nil, "Summary provider is not configured")
	}

	logger := s.logger.WithFields(logrus.Fields{
		"operation": op,
		"video_id":  videoID,
		"model":     s.summarizer.Model(),
	})
	logger.Info("Generating summary")

	// The model call and its write outlive the request.
	runCtx := context.WithoutCancel(ctx)
	if s.config.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.config.ProcessTimeout)
		defer cancel()
	}

	start := time.Now()
	prompt := fmt.Sprintf(userPrompt, video.Title, transcript.Text)
	content, err := s.summarizer.Complete(runCtx, systemPrompt, prompt)
	if err != nil {
		logger.WithError(err).Error("Summary generation failed")
		return nil, errors.SummaryFailure(op, err, "Failed to generate summary")
	}

	result, err := parseResult(content)
	if err != nil {
		logger.WithError(err).Warn("Model answer is not JSON, storing truncated text")
		result = s.fallbackResult(content)
	}

	summary := &models.Summary{
		VideoID:        videoID,
		Summary:        result.Summary,
		KeyPoints:      result.KeyPoints,
		ActionPlan:     result.ActionPlan,
		Model:          s.summarizer.Model(),
		ProcessingTime: time.Since(start).Seconds(),
	}
	if err := s.repo.AddSummary(runCtx, summary); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"key_points":  len(summary.KeyPoints),
		"action_plan": len(summary.ActionPlan),
		"duration":    summary.ProcessingTime,
	}).Info("Summary stored")
	return summary, nil
}

func (s *service) Latest(ctx context.Context, videoID string) (*models.Summary, error) {
	const op = "SummaryService.Latest"

	if videoID == "" {
		return nil, errors.InvalidInput(op, nil, "video_id is required")
	}
	if _, err := s.repo.Find(ctx, videoID); err != nil {
		return nil, err
	}
	return s.repo.LatestSummary(ctx, videoID)
}

type result struct {
	Summary    string   `json:"summary"`
	KeyPoints  []string `json:"key_points"`
	ActionPlan []string `json:"action_plan"`
}

// parseResult decodes the model answer, tolerating a markdown code fence.
func parseResult(content string) (*result, error) {
	content = strings.TrimSpace(content)
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	var r result
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &r); err != nil {
		return nil, err
	}
	if r.Summary == "" {
		return nil, fmt.Errorf("answer has no summary field")
	}
	if r.KeyPoints == nil {
		r.KeyPoints = []string{}
	}
	if r.ActionPlan == nil {
		r.ActionPlan = []string{}
	}
	return &r, nil
}

func (s *service) fallbackResult(content string) *result {
	text := strings.TrimSpace(content)
	runes := []rune(text)
	if len(runes) > s.config.FallbackLength {
		text = string(runes[:s.config.FallbackLength]) + "..."
	}
	return &result{
		Summary:    text,
		KeyPoints:  append([]string(nil), defaultKeyPoints...),
		ActionPlan: append([]string(nil), defaultActionPlan...),
	}
}
