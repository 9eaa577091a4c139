// Package resolver finds the file the extractor produced for a job.
//
// The extractor picks the final name and extension itself, so the resolver
// first trusts the path the extractor reported, then looks for the
// "{job_id}_" prefix, and finally falls back to any accepted file modified
// within a recent window that does not belong to another job.
package resolver

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nijaru/yt-brief/errors"
)

// ErrNotFound is wrapped by every resolution failure.
var ErrNotFound = errors.ResolutionFailure("Resolver.Resolve", nil, "could not locate downloaded file")

type Resolver struct {
	dir        string
	extensions map[string]struct{}
	window     time.Duration
	now        func() time.Time
}

func New(dir string, extensions []string, window time.Duration) *Resolver {
	exts := make(map[string]struct{}, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = struct{}{}
	}
	return &Resolver{
		dir:        dir,
		extensions: exts,
		window:     window,
		now:        time.Now,
	}
}

// Resolve returns the absolute path of the artifact for jobID. reported is the
// path the extractor printed, if any.
func (r *Resolver) Resolve(jobID, reported string) (string, error) {
	if path, ok := r.fromReported(jobID, reported); ok {
		return path, nil
	}

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return "", errors.ResolutionFailure("Resolver.Resolve", err, "failed to read download directory")
	}

	if path, ok := r.byPrefix(jobID, entries); ok {
		return path, nil
	}
	if path, ok := r.byRecency(jobID, entries); ok {
		return path, nil
	}
	return "", ErrNotFound
}

func (r *Resolver) fromReported(jobID, reported string) (string, bool) {
	reported = strings.TrimSpace(reported)
	if reported == "" {
		return "", false
	}
	if !strings.HasPrefix(filepath.Base(reported), jobID+"_") || !r.accepts(reported) {
		return "", false
	}
	path := absolute(reported)
	rel, err := filepath.Rel(absolute(r.dir), path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() || info.Size() == 0 {
		return "", false
	}
	return path, true
}

// byPrefix picks the lexicographically first accepted file named "{jobID}_*".
// os.ReadDir already returns entries sorted by name.
func (r *Resolver) byPrefix(jobID string, entries []os.DirEntry) (string, bool) {
	prefix := jobID + "_"
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), prefix) || !r.accepts(entry.Name()) {
			continue
		}
		return absolute(filepath.Join(r.dir, entry.Name())), true
	}
	return "", false
}

// byRecency picks the most recently modified accepted file inside the window.
// Files named after another job id are never taken.
func (r *Resolver) byRecency(jobID string, entries []os.DirEntry) (string, bool) {
	type candidate struct {
		name    string
		modTime time.Time
	}

	cutoff := r.now().Add(-r.window)
	var candidates []candidate
	for _, entry := range entries {
		if entry.IsDir() || !r.accepts(entry.Name()) || ownedByOther(jobID, entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			continue
		}
		candidates = append(candidates, candidate{name: entry.Name(), modTime: info.ModTime()})
	}
	if len(candidates) == 0 {
		return "", false
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].modTime.After(candidates[j].modTime)
	})
	return absolute(filepath.Join(r.dir, candidates[0].name)), true
}

// ownedByOther reports whether name carries the "{uuid}_" prefix of a job
// other than jobID.
func ownedByOther(jobID, name string) bool {
	prefix, _, ok := strings.Cut(name, "_")
	if !ok || prefix == jobID {
		return false
	}
	_, err := uuid.Parse(prefix)
	return err == nil
}

func (r *Resolver) accepts(name string) bool {
	_, ok := r.extensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

func absolute(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}
