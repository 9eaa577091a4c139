package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nijaru/yt-brief/config"
	"github.com/nijaru/yt-brief/errors"
	"github.com/nijaru/yt-brief/models"
	"github.com/nijaru/yt-brief/services/video"
	"github.com/nijaru/yt-brief/validation"
)

type fakeVideos struct {
	videos   map[string]*models.Video
	artifact *video.Artifact
	download func(url string) (*models.Video, error)
	lastURL  string
	limit    int
	deleted  []string
}

func (f *fakeVideos) Download(ctx context.Context, url string) (*models.Video, error) {
	f.lastURL = url
	return f.download(url)
}

func (f *fakeVideos) Get(ctx context.Context, id string) (*models.Video, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, errors.NotFound("fakeVideos.Get", nil, "Video not found")
	}
	return v, nil
}

func (f *fakeVideos) List(ctx context.Context, limit int) ([]*models.Video, error) {
	f.limit = limit
	out := make([]*models.Video, 0, len(f.videos))
	for _, v := range f.videos {
		out = append(out, v)
	}
	return out, nil
}

func (f *fakeVideos) Delete(ctx context.Context, id string) error {
	if _, ok := f.videos[id]; !ok {
		return errors.NotFound("fakeVideos.Delete", nil, "Video not found")
	}
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeVideos) Artifact(ctx context.Context, id string) (*video.Artifact, error) {
	v, ok := f.videos[id]
	if !ok {
		return nil, errors.NotFound("fakeVideos.Artifact", nil, "Video not found")
	}
	if !v.IsCompleted() {
		return nil, errors.Conflict("fakeVideos.Artifact", nil, "Video is not ready")
	}
	return f.artifact, nil
}

func (f *fakeVideos) RecoverStale(ctx context.Context) (int64, error) { return 0, nil }

type fakeTranscripts struct {
	transcript *models.Transcript
	err        error
}

func (f *fakeTranscripts) Transcribe(ctx context.Context, videoID string) (*models.Transcript, error) {
	if f.err != nil {
		return nil, f.err
	}
	t := *f.transcript
	t.VideoID = videoID
	return &t, nil
}

func (f *fakeTranscripts) Latest(ctx context.Context, videoID string) (*models.Transcript, error) {
	return f.Transcribe(ctx, videoID)
}

type fakeSummaries struct {
	summary *models.Summary
	err     error
}

func (f *fakeSummaries) Summarize(ctx context.Context, videoID string) (*models.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	s := *f.summary
	s.VideoID = videoID
	return &s, nil
}

func (f *fakeSummaries) Latest(ctx context.Context, videoID string) (*models.Summary, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.Summarize(ctx, videoID)
}

type fixture struct {
	handler     http.Handler
	videos      *fakeVideos
	transcripts *fakeTranscripts
	summaries   *fakeSummaries
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	dir := t.TempDir()
	audio := filepath.Join(dir, "job-1_talk.m4a")
	if err := os.WriteFile(audio, []byte("audio-bytes"), 0644); err != nil {
		t.Fatal(err)
	}

	videos := &fakeVideos{
		videos: map[string]*models.Video{
			"job-1": {ID: "job-1", Title: "Talk", URL: "https://youtu.be/abc", Status: models.StatusCompleted, AudioPath: audio},
			"job-2": {ID: "job-2", Title: "Broken", URL: "https://youtu.be/def", Status: models.StatusError, ErrorMessage: "ERROR: unavailable"},
		},
		artifact: &video.Artifact{Path: audio, ContentType: "audio/mp4", Filename: "Talk.m4a", Size: 11},
	}
	videos.download = func(url string) (*models.Video, error) {
		return &models.Video{ID: "job-3", Title: "New", URL: url, Status: models.StatusCompleted, AudioPath: audio}, nil
	}

	transcripts := &fakeTranscripts{
		transcript: &models.Transcript{Text: "hello there world", Language: "en", WordCount: 3, Backend: "local"},
	}
	summaries := &fakeSummaries{
		summary: &models.Summary{Summary: "short", KeyPoints: []string{"a"}},
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		ServerPort:     "0",
		ReadTimeout:    time.Second,
		WriteTimeout:   time.Second,
		RequestTimeout: time.Minute,
		Version:        "test",
		CORS: config.CORSConfig{
			Enabled:        true,
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		},
	}

	srv := NewServer(cfg,
		WithLogger(logger),
		WithServices(videos, transcripts, summaries, validation.New([]string{"youtube.com", "youtu.be"})),
	)

	return &fixture{
		handler:     srv.Handler(),
		videos:      videos,
		transcripts: transcripts,
		summaries:   summaries,
	}
}

func (f *fixture) do(t *testing.T, method, target string, body string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	var resp Response
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode response: %v (%s)", err, rec.Body.String())
		}
	}
	return rec, resp
}

func dataMap(t *testing.T, resp Response) map[string]interface{} {
	t.Helper()
	m, ok := resp.Data.(map[string]interface{})
	if !ok {
		t.Fatalf("expected object data, got %T", resp.Data)
	}
	return m
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec, resp := f.do(t, http.MethodGet, "/health", "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := dataMap(t, resp)
	if data["status"] != "ok" || data["version"] != "test" {
		t.Errorf("unexpected health payload %v", data)
	}
	if resp.RequestID == "" || rec.Header().Get("X-Request-ID") == "" {
		t.Errorf("expected a request id in body and header")
	}
}

func TestDownload(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		download func(string) (*models.Video, error)
		wantCode int
		wantKind errors.Kind
	}{
		{
			name:     "completed",
			body:     `{"url":"https://www.youtube.com/watch?v=abc"}`,
			wantCode: http.StatusOK,
		},
		{
			name:     "malformed json",
			body:     `{"url":`,
			wantCode: http.StatusBadRequest,
			wantKind: errors.KindInvalidInput,
		},
		{
			name:     "missing url",
			body:     `{}`,
			wantCode: http.StatusBadRequest,
			wantKind: errors.KindInvalidInput,
		},
		{
			name: "extraction failure",
			body: `{"url":"https://youtu.be/xyz"}`,
			download: func(string) (*models.Video, error) {
				return nil, errors.ExtractionFailure("test", nil, "ERROR: Video unavailable")
			},
			wantCode: http.StatusBadGateway,
			wantKind: errors.KindExtractionFailure,
		},
		{
			name: "already submitted",
			body: `{"url":"https://youtu.be/xyz"}`,
			download: func(string) (*models.Video, error) {
				return nil, errors.Conflict("test", nil, "URL has already been submitted")
			},
			wantCode: http.StatusConflict,
			wantKind: errors.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.download != nil {
				f.videos.download = tt.download
			}

			rec, resp := f.do(t, http.MethodPost, "/api/videos/downloads", tt.body)
			if rec.Code != tt.wantCode {
				t.Fatalf("expected %d, got %d (%s)", tt.wantCode, rec.Code, rec.Body.String())
			}
			if tt.wantKind != "" {
				if resp.Success || resp.Kind != tt.wantKind || resp.Error == "" {
					t.Errorf("unexpected error envelope %+v", resp)
				}
				return
			}
			data := dataMap(t, resp)
			if !resp.Success || data["status"] != string(models.StatusCompleted) || data["audio_path"] == nil {
				t.Errorf("unexpected payload %v", data)
			}
		})
	}
}

func TestGetAndList(t *testing.T) {
	f := newFixture(t)

	rec, resp := f.do(t, http.MethodGet, "/api/videos/job-2", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := dataMap(t, resp)
	if data["status"] != string(models.StatusError) || data["error_message"] != "ERROR: unavailable" {
		t.Errorf("unexpected job payload %v", data)
	}
	if data["audio_path"] != nil {
		t.Errorf("expected null audio path for failed job, got %v", data["audio_path"])
	}

	rec, resp = f.do(t, http.MethodGet, "/api/videos/missing", "")
	if rec.Code != http.StatusNotFound || resp.Kind != errors.KindNotFound {
		t.Errorf("expected not found, got %d %+v", rec.Code, resp)
	}

	rec, resp = f.do(t, http.MethodGet, "/api/videos", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if items, ok := resp.Data.([]interface{}); !ok || len(items) != 2 {
		t.Errorf("expected two jobs, got %v", resp.Data)
	}
	if f.videos.limit != defaultListLimit {
		t.Errorf("expected default limit %d, got %d", defaultListLimit, f.videos.limit)
	}

	f.do(t, http.MethodGet, "/api/videos?limit=5", "")
	if f.videos.limit != 5 {
		t.Errorf("expected limit 5, got %d", f.videos.limit)
	}

	rec, _ = f.do(t, http.MethodGet, "/api/videos?limit=abc", "")
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad limit, got %d", rec.Code)
	}
}

func TestDelete(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodDelete, "/api/videos/job-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if len(f.videos.deleted) != 1 || f.videos.deleted[0] != "job-1" {
		t.Errorf("expected job-1 deleted, got %v", f.videos.deleted)
	}

	rec, _ = f.do(t, http.MethodDelete, "/api/videos/missing", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestServeFile(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/videos/job-1/download", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/mp4" {
		t.Errorf("expected audio/mp4, got %s", got)
	}
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename=Talk.m4a` {
		t.Errorf("unexpected disposition %q", got)
	}
	if !bytes.Equal(rec.Body.Bytes(), []byte("audio-bytes")) {
		t.Errorf("unexpected body %q", rec.Body.String())
	}

	rec, resp := f.do(t, http.MethodGet, "/api/videos/job-2/download", "")
	if rec.Code != http.StatusConflict || resp.Kind != errors.KindConflict {
		t.Errorf("expected conflict for failed job, got %d %+v", rec.Code, resp)
	}
}

func TestTranscript(t *testing.T) {
	f := newFixture(t)

	rec, resp := f.do(t, http.MethodPost, "/api/videos/transcript?video_id=job-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := dataMap(t, resp)
	if data["video_id"] != "job-1" || data["word_count"] != float64(3) || data["backend"] != "local" {
		t.Errorf("unexpected transcript payload %v", data)
	}
	if segs, ok := data["segments"].([]interface{}); !ok || len(segs) != 0 {
		t.Errorf("expected empty segments array, got %v", data["segments"])
	}

	rec, resp = f.do(t, http.MethodPost, "/api/videos/transcript", "")
	if rec.Code != http.StatusBadRequest || resp.Kind != errors.KindInvalidInput {
		t.Errorf("expected missing video_id to be rejected, got %d", rec.Code)
	}

	f.transcripts.err = errors.TranscriptionFailure("test", "hosted", nil, "Transcription failed")
	rec, resp = f.do(t, http.MethodGet, "/api/videos/job-1/transcript", "")
	if rec.Code != http.StatusBadGateway || resp.Backend != "hosted" {
		t.Errorf("expected backend in failure envelope, got %d %+v", rec.Code, resp)
	}

	f.transcripts.err = errors.TranscriptionUnavailable("test", nil, "No transcription backend available")
	rec, _ = f.do(t, http.MethodPost, "/api/videos/transcript?video_id=job-1", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestSummary(t *testing.T) {
	f := newFixture(t)

	rec, resp := f.do(t, http.MethodPost, "/api/videos/summarize?video_id=job-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	data := dataMap(t, resp)
	if data["summary"] != "short" {
		t.Errorf("unexpected summary payload %v", data)
	}
	if plan, ok := data["action_plan"].([]interface{}); !ok || len(plan) != 0 {
		t.Errorf("expected empty action plan array, got %v", data["action_plan"])
	}

	f.summaries.err = errors.NotFound("test", nil, "Transcript not found")
	rec, _ = f.do(t, http.MethodGet, "/api/videos/job-1/summary", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestUnknownRouteAndPreflight(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/unknown", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}

	rec, _ = f.do(t, http.MethodOptions, "/api/videos/downloads", "")
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("expected wildcard origin")
	}
}
