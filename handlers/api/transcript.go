package api

import (
	"net/http"

	"github.com/nijaru/yt-brief/models"
	"github.com/nijaru/yt-brief/services/transcript"
)

type TranscriptHandler struct {
	service transcript.Service
}

func NewTranscriptHandler(service transcript.Service) *TranscriptHandler {
	return &TranscriptHandler{service: service}
}

// HandleCreate handles POST /api/videos/transcript?video_id=
func (h *TranscriptHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := videoIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	t, err := h.service.Transcribe(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, models.NewTranscriptResponse(t))
}

// HandleGet handles GET /api/videos/{id}/transcript
func (h *TranscriptHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := videoIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	t, err := h.service.Latest(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, models.NewTranscriptResponse(t))
}
