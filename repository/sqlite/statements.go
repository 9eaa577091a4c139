package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/nijaru/yt-brief/errors"
)

const videoColumns = `id, url, title, duration, audio_path, file_size,
               status, error_message, created_at, updated_at`

const (
	createVideoQuery = `
        INSERT INTO videos (
            id, url, title, duration, audio_path, file_size,
            status, error_message, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	getVideoQuery = `
        SELECT ` + videoColumns + `
        FROM videos WHERE id = ?
    `

	getVideoByURLQuery = `
        SELECT ` + videoColumns + `
        FROM videos WHERE url = ?
    `

	listVideosQuery = `
        SELECT ` + videoColumns + `
        FROM videos
        ORDER BY created_at DESC, id DESC
        LIMIT ?
    `

	updateVideoQuery = `
        UPDATE videos SET
            title = ?,
            duration = ?,
            audio_path = ?,
            file_size = ?,
            status = ?,
            error_message = ?,
            updated_at = ?
        WHERE id = ?
    `

	failStaleQuery = `
        UPDATE videos SET
            status = 'error',
            audio_path = NULL,
            error_message = ?,
            updated_at = ?
        WHERE status = 'processing' AND updated_at < ?
    `

	createTranscriptQuery = `
        INSERT INTO transcripts (
            id, video_id, transcript, language, segments,
            word_count, processing_time, backend, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
    `

	latestTranscriptQuery = `
        SELECT id, video_id, transcript, language, segments,
               word_count, processing_time, backend, created_at
        FROM transcripts
        WHERE video_id = ?
        ORDER BY created_at DESC, rowid DESC
        LIMIT 1
    `

	createSummaryQuery = `
        INSERT INTO summaries (
            id, video_id, summary, key_points, action_plan,
            model, processing_time, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
    `

	latestSummaryQuery = `
        SELECT id, video_id, summary, key_points, action_plan,
               model, processing_time, created_at
        FROM summaries
        WHERE video_id = ?
        ORDER BY created_at DESC, rowid DESC
        LIMIT 1
    `

	deleteSummariesQuery   = `DELETE FROM summaries WHERE video_id = ?`
	deleteTranscriptsQuery = `DELETE FROM transcripts WHERE video_id = ?`
	deleteVideoQuery       = `DELETE FROM videos WHERE id = ?`
)

type PreparedStatements struct {
	createVideo      *sql.Stmt
	getVideo         *sql.Stmt
	getVideoByURL    *sql.Stmt
	listVideos       *sql.Stmt
	updateVideo      *sql.Stmt
	failStale        *sql.Stmt
	createTranscript *sql.Stmt
	latestTranscript *sql.Stmt
	createSummary    *sql.Stmt
	latestSummary    *sql.Stmt
}

func (stmts *PreparedStatements) Prepare(ctx context.Context, db *sql.DB) error {
	const op = "PreparedStatements.Prepare"

	targets := []struct {
		stmt  **sql.Stmt
		query string
		name  string
	}{
		{&stmts.createVideo, createVideoQuery, "createVideo"},
		{&stmts.getVideo, getVideoQuery, "getVideo"},
		{&stmts.getVideoByURL, getVideoByURLQuery, "getVideoByURL"},
		{&stmts.listVideos, listVideosQuery, "listVideos"},
		{&stmts.updateVideo, updateVideoQuery, "updateVideo"},
		{&stmts.failStale, failStaleQuery, "failStale"},
		{&stmts.createTranscript, createTranscriptQuery, "createTranscript"},
		{&stmts.latestTranscript, latestTranscriptQuery, "latestTranscript"},
		{&stmts.createSummary, createSummaryQuery, "createSummary"},
		{&stmts.latestSummary, latestSummaryQuery, "latestSummary"},
	}

	for _, target := range targets {
		stmt, err := db.PrepareContext(ctx, target.query)
		if err != nil {
			return errors.Internal(op, err, fmt.Sprintf("failed to prepare %s statement", target.name))
		}
		*target.stmt = stmt
	}

	return nil
}

func (stmts *PreparedStatements) Close() error {
	var errs []error

	statements := [...]*sql.Stmt{
		stmts.createVideo,
		stmts.getVideo,
		stmts.getVideoByURL,
		stmts.listVideos,
		stmts.updateVideo,
		stmts.failStale,
		stmts.createTranscript,
		stmts.latestTranscript,
		stmts.createSummary,
		stmts.latestSummary,
	}

	for _, stmt := range statements {
		if stmt != nil {
			if err := stmt.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("failed to close prepared statements: %v", errs)
	}

	return nil
}
