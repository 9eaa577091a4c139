package video

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-brief/errors"
	"github.com/nijaru/yt-brief/models"
	"github.com/nijaru/yt-brief/repository"
	"github.com/nijaru/yt-brief/scripts"
	"github.com/nijaru/yt-brief/utils"
	"github.com/nijaru/yt-brief/validation"
)

const (
	maxErrorMessageLength = 100
	timeoutMessage        = "download timed out"
	interruptedMessage    = "interrupted before completion"
	persistTimeout        = 10 * time.Second
)

type Repository = repository.VideoRepository

type service struct {
	repo      Repository
	extractor Extractor
	resolver  Resolver
	validator *validation.Validator
	config    Config
	logger    *logrus.Logger
	slots     chan struct{}
}

func NewService(
	repo Repository,
	extractor Extractor,
	resolver Resolver,
	validator *validation.Validator,
	config Config,
	logger *logrus.Logger,
) Service {
	if config.MaxConcurrent <= 0 {
		config.MaxConcurrent = 1
	}
	return &service{
		repo:      repo,
		extractor: extractor,
		resolver:  resolver,
		validator: validator,
		config:    config,
		logger:    logger,
		slots:     make(chan struct{}, config.MaxConcurrent),
	}
}

func (s *service) Download(ctx context.Context, rawURL string) (*models.Video, error) {
	const op = "VideoService.Download"

	url, err := s.validator.SourceURL(rawURL)
	if err != nil {
		return nil, err
	}

	logger := s.logger.WithFields(logrus.Fields{
		"operation": op,
		"url":       url,
	})

	existing, err := s.repo.FindByURL(ctx, url)
	switch {
	case err == nil:
		if s.reusable(existing) {
			logger.WithField("video_id", existing.ID).Info("Returning existing job")
			return existing, nil
		}
		logger.WithField("video_id", existing.ID).Info("Replacing failed or stale job")
		if err := s.remove(ctx, existing); err != nil {
			return nil, err
		}
	case !errors.IsNotFound(err):
		return nil, err
	}

	select {
	case s.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, errors.Internal(op, ctx.Err(), "Request cancelled while waiting for a download slot")
	}
	defer func() { <-s.slots }()

	video := &models.Video{
		ID:     uuid.New().String(),
		URL:    url,
		Title:  models.PendingTitle,
		Status: models.StatusProcessing,
	}
	if err := s.repo.Create(ctx, video); err != nil {
		return nil, err
	}

	// The acquisition outlives the request so the job always reaches a final
	// state, bounded only by the process timeout.
	jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.ProcessTimeout)
	defer cancel()

	logger = logger.WithField("video_id", video.ID)
	logger.Info("Starting acquisition")

	if err := s.acquire(jobCtx, video); err != nil {
		return nil, s.fail(jobCtx, video, err, logger)
	}

	logger.WithFields(logrus.Fields{
		"title":      video.Title,
		"audio_path": video.AudioPath,
		"file_size":  video.FileSize,
	}).Info("Acquisition completed")
	return video, nil
}

// reusable reports whether an earlier job for the same URL can be returned
// instead of starting over.
func (s *service) reusable(v *models.Video) bool {
	switch v.Status {
	case models.StatusCompleted:
		_, err := os.Stat(v.AudioPath)
		return err == nil
	case models.StatusProcessing:
		return !v.IsStale(s.config.ProcessTimeout)
	default:
		return false
	}
}

func (s *service) acquire(ctx context.Context, video *models.Video) error {
	const op = "VideoService.acquire"

	info, err := s.extractor.Metadata(ctx, video.URL)
	if err != nil {
		return errors.ExtractionFailure(op, err, "Failed to fetch video metadata")
	}

	if info.Title != "" {
		video.Title = info.Title
	}
	video.Duration = info.Duration
	if err := s.repo.Update(ctx, video); err != nil {
		return err
	}

	reported, err := s.extractor.Download(ctx, video.URL, s.config.DownloadDir, video.ID)
	if err != nil {
		return errors.ExtractionFailure(op, err, "Failed to download audio")
	}

	path, err := s.resolver.Resolve(video.ID, reported)
	if err != nil {
		return err
	}

	stat, err := os.Stat(path)
	if err != nil {
		return errors.ResolutionFailure(op, err, "Downloaded file disappeared")
	}
	if stat.Size() == 0 {
		os.Remove(path)
		return errors.ExtractionFailure(op, nil, "Downloaded file is empty")
	}

	video.Complete(path, stat.Size())
	return s.repo.Update(ctx, video)
}

// fail records err on the job and returns the error to surface to the caller.
func (s *service) fail(ctx context.Context, video *models.Video, err error, logger *logrus.Entry) error {
	const op = "VideoService.fail"

	timedOut := ctx.Err() == context.DeadlineExceeded
	message := failureMessage(err)
	if timedOut {
		message = timeoutMessage
		err = errors.ExtractionFailure(op, err, "Download timed out")
	}

	logger.WithError(err).WithField("error_message", message).Error("Acquisition failed")

	video.Fail(utils.Truncate(message, maxErrorMessageLength))

	persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), persistTimeout)
	defer cancel()
	if updateErr := s.repo.Update(persistCtx, video); updateErr != nil {
		logger.WithError(updateErr).Error("Failed to persist job failure")
	}

	return err
}

// failureMessage picks the most informative single line for the job record.
func failureMessage(err error) string {
	var scriptErr *scripts.ScriptError
	if errors.As(err, &scriptErr) {
		return scriptErr.Detail()
	}
	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return err.Error()
}

func (s *service) Get(ctx context.Context, id string) (*models.Video, error) {
	const op = "VideoService.Get"

	if id == "" {
		return nil, errors.InvalidInput(op, nil, "ID is required")
	}
	return s.repo.Find(ctx, id)
}

func (s *service) List(ctx context.Context, limit int) ([]*models.Video, error) {
	return s.repo.List(ctx, limit)
}

func (s *service) Delete(ctx context.Context, id string) error {
	video, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.remove(ctx, video)
}

func (s *service) remove(ctx context.Context, video *models.Video) error {
	if err := s.repo.Delete(ctx, video.ID); err != nil {
		return err
	}
	if video.AudioPath != "" {
		if err := os.Remove(video.AudioPath); err != nil && !os.IsNotExist(err) {
			s.logger.WithError(err).WithField("path", video.AudioPath).Warn("Failed to remove audio file")
		}
	}
	s.logger.WithField("video_id", video.ID).Info("Deleted job")
	return nil
}

func (s *service) Artifact(ctx context.Context, id string) (*Artifact, error) {
	const op = "VideoService.Artifact"

	video, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !video.IsCompleted() {
		return nil, errors.Conflict(op, nil, "Video is not ready for download")
	}

	stat, err := os.Stat(video.AudioPath)
	if err != nil {
		return nil, errors.NotFound(op, err, "Audio file not found")
	}

	return &Artifact{
		Path:        video.AudioPath,
		ContentType: utils.AudioContentType(video.AudioPath),
		Filename:    utils.SanitizeFilename(video.Title) + filepath.Ext(video.AudioPath),
		Size:        stat.Size(),
	}, nil
}

// RecoverStale runs once at startup, before any acquisition, so every job
// still in processing belongs to a previous run regardless of its age.
func (s *service) RecoverStale(ctx context.Context) (int64, error) {
	n, err := s.repo.FailStale(ctx, time.Now(), interruptedMessage)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.WithField("count", n).Warn("Marked interrupted jobs as failed")
	}
	return n, nil
}
