package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/nijaru/yt-brief/errors"
	"github.com/nijaru/yt-brief/models"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), DefaultDBConfig())
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewRepository(db)
}

func newVideo(id, url string) *models.Video {
	return &models.Video{
		ID:     id,
		URL:    url,
		Title:  models.PendingTitle,
		Status: models.StatusProcessing,
	}
}

func TestCreateAndUpdateVideo(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	video := newVideo("abc", "https://www.youtube.com/watch?v=abc")
	if err := repo.Create(ctx, video); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	got, err := repo.Find(ctx, "abc")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got.Status != models.StatusProcessing || got.AudioPath != "" {
		t.Errorf("unexpected initial state %+v", got)
	}

	video.Title = "Some Talk"
	video.Duration = 213.5
	video.Complete("/downloads/abc_Some Talk.m4a", 1024)
	if err := repo.Update(ctx, video); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	got, err = repo.Find(ctx, "abc")
	if err != nil {
		t.Fatalf("Find() error = %v", err)
	}
	if got.Title != "Some Talk" || got.Duration != 213.5 {
		t.Errorf("metadata not persisted: %+v", got)
	}
	if !got.IsCompleted() || got.AudioPath != "/downloads/abc_Some Talk.m4a" || got.FileSize != 1024 {
		t.Errorf("completion not persisted: %+v", got)
	}
}

func TestCreateDuplicateURL(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Create(ctx, newVideo("a", "https://youtu.be/x")); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	err := repo.Create(ctx, newVideo("b", "https://youtu.be/x"))
	if !errors.IsKind(err, errors.KindConflict) {
		t.Errorf("expected conflict, got %v", err)
	}

	got, err := repo.FindByURL(ctx, "https://youtu.be/x")
	if err != nil {
		t.Fatalf("FindByURL() error = %v", err)
	}
	if got.ID != "a" {
		t.Errorf("expected first job, got %s", got.ID)
	}
}

func TestFindMissing(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Find(context.Background(), "missing")
	if !errors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if err := repo.Update(context.Background(), newVideo("missing", "u")); !errors.IsNotFound(err) {
		t.Errorf("expected not found on update, got %v", err)
	}
}

func TestFailedVideoHasNoAudioPath(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	video := newVideo("f", "https://youtu.be/f")
	if err := repo.Create(ctx, video); err != nil {
		t.Fatal(err)
	}
	video.Fail("ERROR: Video unavailable")
	if err := repo.Update(ctx, video); err != nil {
		t.Fatal(err)
	}

	got, err := repo.Find(ctx, "f")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsFailed() || got.AudioPath != "" || got.ErrorMessage != "ERROR: Video unavailable" {
		t.Errorf("unexpected failed state %+v", got)
	}
}

func TestListOrderAndLimit(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		v := newVideo(id, "https://youtu.be/"+id)
		v.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		if err := repo.Create(ctx, v); err != nil {
			t.Fatal(err)
		}
	}

	all, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"third", "second", "first"}
	if len(all) != len(want) {
		t.Fatalf("expected %d videos, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, all[i].ID)
		}
	}

	again, err := repo.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	for i := range again {
		if again[i].ID != all[i].ID {
			t.Errorf("list order changed between calls at %d", i)
		}
	}

	limited, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 2 || limited[0].ID != "third" {
		t.Errorf("unexpected limited list %v", limited)
	}
}

func TestTranscriptRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Create(ctx, newVideo("v", "https://youtu.be/v")); err != nil {
		t.Fatal(err)
	}

	older := &models.Transcript{
		VideoID:   "v",
		Text:      "old text",
		Language:  "en",
		CreatedAt: time.Now().UTC().Add(-time.Hour),
	}
	if err := repo.AddTranscript(ctx, older); err != nil {
		t.Fatalf("AddTranscript() error = %v", err)
	}

	newer := &models.Transcript{
		VideoID:  "v",
		Text:     "hello brave new world",
		Language: "en",
		Segments: []models.Segment{
			{Start: 0, End: 1.5, Text: "hello brave"},
			{Start: 1.5, End: 3, Text: "new world"},
		},
		WordCount:      4,
		ProcessingTime: 2.25,
		Backend:        "local",
	}
	if err := repo.AddTranscript(ctx, newer); err != nil {
		t.Fatalf("AddTranscript() error = %v", err)
	}
	if newer.ID == "" {
		t.Fatal("expected transcript id to be assigned")
	}

	got, err := repo.LatestTranscript(ctx, "v")
	if err != nil {
		t.Fatalf("LatestTranscript() error = %v", err)
	}
	if got.ID != newer.ID || got.Text != newer.Text || got.WordCount != 4 || got.Backend != "local" {
		t.Errorf("unexpected transcript %+v", got)
	}
	if len(got.Segments) != 2 || got.Segments[1].Start != 1.5 || got.Segments[1].Text != "new world" {
		t.Errorf("segments not preserved: %+v", got.Segments)
	}

	if _, err := repo.LatestTranscript(ctx, "other"); !errors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Create(ctx, newVideo("v", "https://youtu.be/v")); err != nil {
		t.Fatal(err)
	}

	summary := &models.Summary{
		VideoID:    "v",
		Summary:    "A short talk.",
		KeyPoints:  []string{"one", "two"},
		ActionPlan: []string{"do it"},
		Model:      "gpt-4",
	}
	if err := repo.AddSummary(ctx, summary); err != nil {
		t.Fatalf("AddSummary() error = %v", err)
	}

	got, err := repo.LatestSummary(ctx, "v")
	if err != nil {
		t.Fatalf("LatestSummary() error = %v", err)
	}
	if got.Summary != "A short talk." || len(got.KeyPoints) != 2 || len(got.ActionPlan) != 1 || got.Model != "gpt-4" {
		t.Errorf("unexpected summary %+v", got)
	}
}

func TestDeleteRemovesChildren(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	if err := repo.Create(ctx, newVideo("v", "https://youtu.be/v")); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddTranscript(ctx, &models.Transcript{VideoID: "v", Text: "x"}); err != nil {
		t.Fatal(err)
	}
	if err := repo.AddSummary(ctx, &models.Summary{VideoID: "v", Summary: "x"}); err != nil {
		t.Fatal(err)
	}

	if err := repo.Delete(ctx, "v"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.Find(ctx, "v"); !errors.IsNotFound(err) {
		t.Errorf("expected video to be gone, got %v", err)
	}
	if _, err := repo.LatestTranscript(ctx, "v"); !errors.IsNotFound(err) {
		t.Errorf("expected transcripts to be gone, got %v", err)
	}
	if _, err := repo.LatestSummary(ctx, "v"); !errors.IsNotFound(err) {
		t.Errorf("expected summaries to be gone, got %v", err)
	}
	if err := repo.Delete(ctx, "v"); !errors.IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestFailStale(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	stuck := newVideo("stuck", "https://youtu.be/stuck")
	if err := repo.Create(ctx, stuck); err != nil {
		t.Fatal(err)
	}
	done := newVideo("done", "https://youtu.be/done")
	if err := repo.Create(ctx, done); err != nil {
		t.Fatal(err)
	}
	done.Complete("/tmp/done.m4a", 1)
	if err := repo.Update(ctx, done); err != nil {
		t.Fatal(err)
	}

	n, err := repo.FailStale(ctx, time.Now().Add(time.Minute), "interrupted before completion")
	if err != nil {
		t.Fatalf("FailStale() error = %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 stale video, got %d", n)
	}

	got, err := repo.Find(ctx, "stuck")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsFailed() || got.ErrorMessage != "interrupted before completion" {
		t.Errorf("unexpected stale state %+v", got)
	}
	got, err = repo.Find(ctx, "done")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsCompleted() {
		t.Errorf("completed video should be untouched, got %s", got.Status)
	}
}

func TestFailStaleAtStartupIncludesFreshRows(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	fresh := newVideo("fresh", "https://youtu.be/fresh")
	if err := repo.Create(ctx, fresh); err != nil {
		t.Fatal(err)
	}

	n, err := repo.FailStale(ctx, time.Now(), "interrupted before completion")
	if err != nil {
		t.Fatalf("FailStale() error = %v", err)
	}
	if n != 1 {
		t.Errorf("expected the fresh processing row to be recovered, got %d", n)
	}

	got, err := repo.Find(ctx, "fresh")
	if err != nil {
		t.Fatal(err)
	}
	if !got.IsFailed() || got.AudioPath != "" {
		t.Errorf("unexpected state after recovery %+v", got)
	}
}
