package transcript

import (
	"context"
	"os"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-brief/errors"
	"github.com/nijaru/yt-brief/models"
	"github.com/nijaru/yt-brief/repository"
	"github.com/nijaru/yt-brief/utils"
)

type Repository interface {
	repository.TranscriptRepository
	Find(ctx context.Context, id string) (*models.Video, error)
}

type service struct {
	repo     Repository
	router   Router
	archiver Archiver
	config   Config
	logger   *logrus.Logger
	locks    sync.Map
}

// NewService wires the transcript service. archiver may be nil.
func NewService(
	repo Repository,
	router Router,
	archiver Archiver,
	config Config,
	logger *logrus.Logger,
) Service {
	if config.DefaultLanguage == "" {
		config.DefaultLanguage = "en"
	}
	return &service{
		repo:     repo,
		router:   router,
		archiver: archiver,
		config:   config,
		logger:   logger,
	}
}

// lockFor serializes transcription runs of the same job.
func (s *service) lockFor(videoID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(videoID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

func (s *service) Transcribe(ctx context.Context, videoID string) (*models.Transcript, error) {
	const op = "TranscriptService.Transcribe"

	if videoID == "" {
		return nil, errors.InvalidInput(op, nil, "video_id is required")
	}

	video, err := s.repo.Find(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !video.IsCompleted() || video.AudioPath == "" {
		return nil, errors.NotFound(op, nil, "Audio file not found")
	}
	if _, err := os.Stat(video.AudioPath); err != nil {
		return nil, errors.NotFound(op, err, "Audio file not found")
	}

	lock := s.lockFor(videoID)
	lock.Lock()
	defer lock.Unlock()

	logger := s.logger.WithFields(logrus.Fields{
		"operation": op,
		"video_id":  videoID,
	})
	logger.Info("Starting transcription")

	runCtx := context.WithoutCancel(ctx)
	if s.config.ProcessTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(runCtx, s.config.ProcessTimeout)
		defer cancel()
	}

	start := time.Now()
	result, backend, err := s.router.Transcribe(runCtx, video.AudioPath)
	if err != nil {
		logger.WithError(err).Error("Transcription failed")
		return nil, err
	}

	language := result.Language
	if language == "" {
		language = s.config.DefaultLanguage
	}
	segments := result.Segments
	if segments == nil {
		segments = []models.Segment{}
	}

	transcript := &models.Transcript{
		VideoID:        videoID,
		Text:           result.Text,
		Language:       language,
		Segments:       segments,
		WordCount:      utils.WordCount(result.Text),
		ProcessingTime: time.Since(start).Seconds(),
		Backend:        backend,
	}
	if err := s.repo.AddTranscript(runCtx, transcript); err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"backend":    backend,
		"word_count": transcript.WordCount,
		"segments":   len(segments),
		"duration":   transcript.ProcessingTime,
	}).Info("Transcription completed")

	s.archive(runCtx, transcript, logger)
	return transcript, nil
}

func (s *service) archive(ctx context.Context, transcript *models.Transcript, logger *logrus.Entry) {
	if s.archiver == nil {
		return
	}
	if err := s.archiver.SaveTranscript(ctx, transcript); err != nil {
		logger.WithError(err).Warn("Failed to archive transcript")
	}
}

func (s *service) Latest(ctx context.Context, videoID string) (*models.Transcript, error) {
	const op = "TranscriptService.Latest"

	if videoID == "" {
		return nil, errors.InvalidInput(op, nil, "video_id is required")
	}
	if _, err := s.repo.Find(ctx, videoID); err != nil {
		return nil, err
	}

	transcript, err := s.repo.LatestTranscript(ctx, videoID)
	if err == nil || !errors.IsNotFound(err) || s.archiver == nil {
		return transcript, err
	}

	archived, archiveErr := s.archiver.LatestTranscript(ctx, videoID)
	if archiveErr != nil {
		s.logger.WithError(archiveErr).WithField("video_id", videoID).Debug("No archived transcript")
		return nil, err
	}
	if archived.VideoID != videoID {
		return nil, err
	}
	s.logger.WithFields(logrus.Fields{
		"video_id":      videoID,
		"transcript_id": archived.ID,
	}).Info("Serving transcript from archive")
	return archived, nil
}
