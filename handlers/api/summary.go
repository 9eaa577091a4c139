package api

import (
	"net/http"

	"github.com/nijaru/yt-brief/models"
	"github.com/nijaru/yt-brief/services/summary"
)

type SummaryHandler struct {
	service summary.Service
}

func NewSummaryHandler(service summary.Service) *SummaryHandler {
	return &SummaryHandler{service: service}
}

// HandleCreate handles POST /api/videos/summarize?video_id=
func (h *SummaryHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	id, err := videoIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s, err := h.service.Summarize(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, models.NewSummaryResponse(s))
}

// HandleGet handles GET /api/videos/{id}/summary
func (h *SummaryHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := videoIDParam(r)
	if err != nil {
		respondError(w, r, err)
		return
	}

	s, err := h.service.Latest(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	respondJSON(w, r, http.StatusOK, models.NewSummaryResponse(s))
}
