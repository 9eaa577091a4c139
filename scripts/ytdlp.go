package scripts

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
)

// Extractor drives yt-dlp in metadata-only and download mode.
type Extractor struct {
	runner Runner
	config Config
}

func NewExtractor(runner Runner, cfg Config) *Extractor {
	if cfg.ExtractorPath == "" {
		cfg.ExtractorPath = "yt-dlp"
	}
	return &Extractor{runner: runner, config: cfg}
}

// OutputTemplate is the yt-dlp output template for a job. The job id prefix
// keeps concurrent downloads in one directory from colliding.
func OutputTemplate(dir, jobID string) string {
	return filepath.Join(dir, jobID+"_%(title)s.%(ext)s")
}

func (e *Extractor) Metadata(ctx context.Context, url string) (*VideoInfo, error) {
	const op = "Extractor.Metadata"

	output, err := e.runner.Run(ctx, e.config.ExtractorPath,
		"--dump-single-json",
		"--no-playlist",
		"--skip-download",
		"--no-warnings",
		url,
	)
	if err != nil {
		return nil, err
	}

	var info VideoInfo
	if err := unmarshalResult(output, &info); err != nil {
		return nil, newScriptError(op, err, "failed to parse metadata")
	}
	if info.IsLive {
		return nil, newScriptError(op, nil, "live streams are not supported")
	}
	return &info, nil
}

// Download fetches the best audio stream of url into dir using the job's
// output template and returns the final path yt-dlp reports, which may be
// empty for older versions.
func (e *Extractor) Download(ctx context.Context, url, dir, jobID string) (string, error) {
	output, err := e.runner.Run(ctx, e.config.ExtractorPath,
		"-f", e.config.GetFormat(),
		"--no-playlist",
		"--no-part",
		"--restrict-filenames",
		"-o", OutputTemplate(dir, jobID),
		"--print", "after_move:filepath",
		"--no-simulate",
		"--quiet",
		"--no-warnings",
		url,
	)
	if err != nil {
		return "", err
	}
	return lastLine(output), nil
}

func lastLine(output []byte) string {
	lines := strings.Split(strings.TrimSpace(string(output)), "\n")
	return strings.TrimSpace(lines[len(lines)-1])
}

func unmarshalResult(data []byte, v interface{}) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal result: %w", err)
	}
	return nil
}
