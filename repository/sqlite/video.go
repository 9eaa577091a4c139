package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/mattn/go-sqlite3"

	"github.com/nijaru/yt-brief/errors"
	"github.com/nijaru/yt-brief/models"
	"github.com/nijaru/yt-brief/repository"
)

type Repository struct {
	db *DB
}

var (
	_ repository.VideoRepository      = (*Repository)(nil)
	_ repository.TranscriptRepository = (*Repository)(nil)
	_ repository.SummaryRepository    = (*Repository)(nil)
)

func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func (r *Repository) Create(ctx context.Context, video *models.Video) error {
	const op = "SQLiteRepository.Create"

	now := time.Now().UTC()
	if video.CreatedAt.IsZero() {
		video.CreatedAt = now
	}
	video.UpdatedAt = now

	err := withRetry(ctx, r.db.config, func() error {
		_, err := r.db.statements.createVideo.ExecContext(ctx,
			video.ID,
			video.URL,
			video.Title,
			video.Duration,
			nullString(video.AudioPath),
			video.FileSize,
			string(video.Status),
			nullString(video.ErrorMessage),
			video.CreatedAt.UTC(),
			video.UpdatedAt,
		)
		return err
	})
	if isUniqueViolation(err) {
		return errors.Conflict(op, err, "URL has already been submitted")
	}
	if err != nil {
		return errors.Internal(op, err, "Failed to create video")
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, video *models.Video) error {
	const op = "SQLiteRepository.Update"

	video.UpdatedAt = time.Now().UTC()

	var affected int64
	err := withRetry(ctx, r.db.config, func() error {
		res, err := r.db.statements.updateVideo.ExecContext(ctx,
			video.Title,
			video.Duration,
			nullString(video.AudioPath),
			video.FileSize,
			string(video.Status),
			nullString(video.ErrorMessage),
			video.UpdatedAt,
			video.ID,
		)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to update video")
	}
	if affected == 0 {
		return errors.NotFound(op, nil, "Video not found")
	}
	return nil
}

func (r *Repository) Find(ctx context.Context, id string) (*models.Video, error) {
	const op = "SQLiteRepository.Find"

	video, err := scanVideo(r.db.statements.getVideo.QueryRowContext(ctx, id))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Video not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query video")
	}
	return video, nil
}

func (r *Repository) FindByURL(ctx context.Context, url string) (*models.Video, error) {
	const op = "SQLiteRepository.FindByURL"

	video, err := scanVideo(r.db.statements.getVideoByURL.QueryRowContext(ctx, url))
	if err == sql.ErrNoRows {
		return nil, errors.NotFound(op, nil, "Video not found")
	}
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to query video")
	}
	return video, nil
}

func (r *Repository) List(ctx context.Context, limit int) ([]*models.Video, error) {
	const op = "SQLiteRepository.List"

	if limit <= 0 {
		limit = -1 // SQLite treats a negative LIMIT as unbounded
	}

	rows, err := r.db.statements.listVideos.QueryContext(ctx, limit)
	if err != nil {
		return nil, errors.Internal(op, err, "Failed to list videos")
	}
	defer rows.Close()

	videos := make([]*models.Video, 0)
	for rows.Next() {
		video, err := scanVideo(rows)
		if err != nil {
			return nil, errors.Internal(op, err, "Failed to scan video")
		}
		videos = append(videos, video)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Internal(op, err, "Failed to iterate videos")
	}
	return videos, nil
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	const op = "SQLiteRepository.Delete"

	var affected int64
	err := WithTransaction(ctx, r.db.conn, func(tx Executor) error {
		if _, err := tx.ExecContext(ctx, deleteSummariesQuery, id); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, deleteTranscriptsQuery, id); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, deleteVideoQuery, id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return errors.Internal(op, err, "Failed to delete video")
	}
	if affected == 0 {
		return errors.NotFound(op, nil, "Video not found")
	}
	return nil
}

func (r *Repository) FailStale(ctx context.Context, cutoff time.Time, message string) (int64, error) {
	const op = "SQLiteRepository.FailStale"

	res, err := r.db.statements.failStale.ExecContext(ctx, message, time.Now().UTC(), cutoff.UTC())
	if err != nil {
		return 0, errors.Internal(op, err, "Failed to fail stale videos")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Internal(op, err, "Failed to count stale videos")
	}
	return n, nil
}

func scanVideo(row rowScanner) (*models.Video, error) {
	video := &models.Video{}
	var (
		status       string
		audioPath    sql.NullString
		errorMessage sql.NullString
	)

	err := row.Scan(
		&video.ID,
		&video.URL,
		&video.Title,
		&video.Duration,
		&audioPath,
		&video.FileSize,
		&status,
		&errorMessage,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	video.Status = models.Status(status)
	video.AudioPath = audioPath.String
	video.ErrorMessage = errorMessage.String
	return video, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
