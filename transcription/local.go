package transcription

import (
	"context"
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/nijaru/yt-brief/models"
	"github.com/nijaru/yt-brief/scripts"
)

// Local runs the openai-whisper command line tool.
type Local struct {
	runner   scripts.Runner
	binary   string
	model    string
	lookPath func(string) (string, error)
}

func NewLocal(runner scripts.Runner, binary, model string) *Local {
	if binary == "" {
		binary = "whisper"
	}
	if model == "" {
		model = "base"
	}
	return &Local{
		runner:   runner,
		binary:   binary,
		model:    model,
		lookPath: exec.LookPath,
	}
}

func (l *Local) Name() string { return BackendLocal }

func (l *Local) Available() bool {
	_, err := l.lookPath(l.binary)
	return err == nil
}

type whisperOutput struct {
	Text     string `json:"text"`
	Language string `json:"language"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (l *Local) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	outDir, err := os.MkdirTemp("", "whisper-*")
	if err != nil {
		return nil, errors.Wrap(err, "create whisper output directory")
	}
	defer os.RemoveAll(outDir)

	_, err = l.runner.Run(ctx, l.binary,
		audioPath,
		"--model", l.model,
		"--output_format", "json",
		"--output_dir", outDir,
		"--verbose", "False",
	)
	if err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	data, err := os.ReadFile(filepath.Join(outDir, base+".json"))
	if err != nil {
		return nil, errors.Wrap(err, "read whisper output")
	}

	var out whisperOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(err, "parse whisper output")
	}

	segments := make([]models.Segment, 0, len(out.Segments))
	for _, s := range out.Segments {
		segments = append(segments, models.Segment{
			Start: s.Start,
			End:   s.End,
			Text:  strings.TrimSpace(s.Text),
		})
	}

	return &Result{
		Text:     strings.TrimSpace(out.Text),
		Language: out.Language,
		Segments: segments,
	}, nil
}
