package transcription

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-brief/errors"
)

// Router picks a backend per file. Files above maxUploadBytes, or any file
// when the hosted backend has no credential, go straight to the local
// backend. Otherwise the hosted backend is tried first and a failure gets
// exactly one retry on the local backend.
type Router struct {
	hosted         Transcriber
	local          Transcriber
	maxUploadBytes int64
	logger         *logrus.Logger
}

func NewRouter(hosted, local Transcriber, maxUploadBytes int64, logger *logrus.Logger) *Router {
	return &Router{
		hosted:         hosted,
		local:          local,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// Transcribe returns the result together with the name of the backend that
// produced it.
func (r *Router) Transcribe(ctx context.Context, audioPath string) (*Result, string, error) {
	const op = "Router.Transcribe"

	info, err := os.Stat(audioPath)
	if err != nil {
		return nil, "", errors.NotFound(op, err, "Audio file not found")
	}
	size := info.Size()

	log := r.logger.WithFields(logrus.Fields{
		"path": audioPath,
		"size": size,
	})

	hostedReady := available(r.hosted)
	localReady := available(r.local)

	if size > r.maxUploadBytes || !hostedReady {
		if !localReady {
			reason := "no hosted credential configured"
			if hostedReady {
				reason = fmt.Sprintf("file exceeds hosted upload limit of %d bytes", r.maxUploadBytes)
			}
			return nil, "", errors.TranscriptionUnavailable(op, nil,
				"No transcription backend available: "+reason+" and local backend is not installed")
		}
		log.WithField("backend", BackendLocal).Info("Routing transcription to local backend")
		return r.run(ctx, op, r.local, audioPath)
	}

	log.WithField("backend", BackendHosted).Info("Routing transcription to hosted backend")
	result, hostedErr := r.hosted.Transcribe(ctx, audioPath)
	if hostedErr == nil {
		return result, r.hosted.Name(), nil
	}

	if !localReady {
		return nil, "", errors.TranscriptionFailure(op, r.hosted.Name(), hostedErr, "Hosted transcription failed")
	}

	log.WithError(hostedErr).Warn("Hosted transcription failed, falling back to local backend")
	result, localErr := r.local.Transcribe(ctx, audioPath)
	if localErr != nil {
		return nil, "", errors.TranscriptionFailure(op, r.local.Name(),
			fmt.Errorf("hosted: %v; local: %w", hostedErr, localErr),
			"Hosted and local transcription both failed")
	}
	return result, r.local.Name(), nil
}

func (r *Router) run(ctx context.Context, op string, t Transcriber, audioPath string) (*Result, string, error) {
	result, err := t.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, "", errors.TranscriptionFailure(op, t.Name(), err, "Transcription failed")
	}
	return result, t.Name(), nil
}

func available(t Transcriber) bool {
	return t != nil && t.Available()
}
