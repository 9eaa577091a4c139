package api

import (
	"mime"
	"net/http"
	"os"
	"strconv"

	"github.com/nijaru/yt-brief/errors"
	"github.com/nijaru/yt-brief/models"
	"github.com/nijaru/yt-brief/services/video"
	"github.com/nijaru/yt-brief/validation"
)

const defaultListLimit = 50

type VideoHandler struct {
	service   video.Service
	validator *validation.Validator
}

func NewVideoHandler(service video.Service, validator *validation.Validator) *VideoHandler {
	return &VideoHandler{
		service:   service,
		validator: validator,
	}
}

// HandleDownload handles POST /api/videos/downloads
func (h *VideoHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	var req models.DownloadRequest
	if err := readJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	if err := h.validator.Struct(req); err != nil {
		respondError(w, r, err)
		return
	}

	v, err := h.service.Download(r.Context(), req.URL)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, models.NewVideoResponse(v))
}

// HandleGet handles GET /api/videos/{id}
func (h *VideoHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	v, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, models.NewVideoResponse(v))
}

// HandleList handles GET /api/videos
func (h *VideoHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "VideoHandler.HandleList"

	limit := defaultListLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			respondError(w, r, errors.InvalidInput(op, err, "limit must be a non-negative integer"))
			return
		}
		limit = n
	}

	videos, err := h.service.List(r.Context(), limit)
	if err != nil {
		respondError(w, r, err)
		return
	}

	out := make([]*models.VideoResponse, 0, len(videos))
	for _, v := range videos {
		out = append(out, models.NewVideoResponse(v))
	}
	respondJSON(w, r, http.StatusOK, out)
}

// HandleDelete handles DELETE /api/videos/{id}
func (h *VideoHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.service.Delete(r.Context(), id); err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

// HandleFile handles GET /api/videos/{id}/download
func (h *VideoHandler) HandleFile(w http.ResponseWriter, r *http.Request) {
	const op = "VideoHandler.HandleFile"

	artifact, err := h.service.Artifact(r.Context(), r.PathValue("id"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	f, err := os.Open(artifact.Path)
	if err != nil {
		respondError(w, r, errors.NotFound(op, err, "Audio file not found"))
		return
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		respondError(w, r, errors.Internal(op, err, "Failed to read audio file"))
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": artifact.Filename,
	}))
	http.ServeContent(w, r, artifact.Filename, stat.ModTime(), f)
}
