package transcription

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type whisperRunner struct {
	output string
	err    error
	args   []string
}

// Run mimics the whisper CLI by writing output into --output_dir.
func (w *whisperRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	w.args = args
	if w.err != nil {
		return nil, w.err
	}
	var dir string
	for i, a := range args {
		if a == "--output_dir" && i+1 < len(args) {
			dir = args[i+1]
		}
	}
	base := filepath.Base(args[0])
	base = base[:len(base)-len(filepath.Ext(base))]
	if err := os.WriteFile(filepath.Join(dir, base+".json"), []byte(w.output), 0644); err != nil {
		return nil, err
	}
	return nil, nil
}

func TestLocalTranscribe(t *testing.T) {
	runner := &whisperRunner{output: `{
		"text": " one two three",
		"language": "en",
		"segments": [{"id": 0, "start": 0, "end": 2.5, "text": " one two three", "tokens": [1, 2]}]
	}`}
	l := NewLocal(runner, "whisper", "small")

	result, err := l.Transcribe(context.Background(), "/downloads/job_talk.m4a")
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if result.Text != "one two three" || result.Language != "en" {
		t.Errorf("unexpected result %+v", result)
	}
	if len(result.Segments) != 1 || result.Segments[0].End != 2.5 {
		t.Errorf("unexpected segments %+v", result.Segments)
	}
	if runner.args[0] != "/downloads/job_talk.m4a" || runner.args[2] != "small" {
		t.Errorf("unexpected args %v", runner.args)
	}
}

func TestLocalTranscribeErrors(t *testing.T) {
	tests := []struct {
		name   string
		runner *whisperRunner
	}{
		{"command fails", &whisperRunner{err: errors.New("exit status 1")}},
		{"bad output", &whisperRunner{output: "not json"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := NewLocal(tt.runner, "", "")
			if _, err := l.Transcribe(context.Background(), "/tmp/a.mp3"); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestLocalAvailable(t *testing.T) {
	l := NewLocal(&whisperRunner{}, "whisper", "base")

	l.lookPath = func(string) (string, error) { return "/usr/bin/whisper", nil }
	if !l.Available() {
		t.Error("expected available when binary is on PATH")
	}

	l.lookPath = func(string) (string, error) { return "", errors.New("not found") }
	if l.Available() {
		t.Error("expected unavailable when binary is missing")
	}
}
