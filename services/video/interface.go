package video

import (
	"context"
	"time"

	"github.com/nijaru/yt-brief/models"
	"github.com/nijaru/yt-brief/scripts"
)

type Service interface {
	// Download validates url, runs the extractor and returns the job in its
	// final state. A completed or in-flight job for the same URL is returned
	// as is; a failed or stale one is replaced by a new job.
	Download(ctx context.Context, url string) (*models.Video, error)

	Get(ctx context.Context, id string) (*models.Video, error)

	// List returns jobs newest first; limit <= 0 means no limit.
	List(ctx context.Context, limit int) ([]*models.Video, error)

	// Delete removes the job, its derived records and its audio file.
	Delete(ctx context.Context, id string) error

	// Artifact describes the audio file of a completed job for download.
	Artifact(ctx context.Context, id string) (*Artifact, error)

	// RecoverStale fails every job left in processing by a previous run.
	// It must be called before the service accepts work.
	RecoverStale(ctx context.Context) (int64, error)
}

// Extractor is the part of the yt-dlp wrapper the service needs.
type Extractor interface {
	Metadata(ctx context.Context, url string) (*scripts.VideoInfo, error)
	Download(ctx context.Context, url, dir, jobID string) (string, error)
}

// Resolver locates the file the extractor produced for a job.
type Resolver interface {
	Resolve(jobID, reported string) (string, error)
}

type Artifact struct {
	Path        string
	ContentType string
	Filename    string
	Size        int64
}

type Config struct {
	// DownloadDir is shared by all jobs; the job id prefix keeps files apart.
	DownloadDir string `json:"download_dir"`

	// ProcessTimeout bounds one acquisition, metadata and download included.
	ProcessTimeout time.Duration `json:"process_timeout"`

	// MaxConcurrent caps the number of extractor runs at once.
	MaxConcurrent int `json:"max_concurrent"`
}
