package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/nijaru/yt-brief/errors"
	"github.com/nijaru/yt-brief/middleware"
)

// Response is the envelope of every JSON answer.
type Response struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Kind      errors.Kind `json:"kind,omitempty"`
	Backend   string      `json:"backend,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

func respondJSON(w http.ResponseWriter, r *http.Request, code int, payload interface{}) {
	writeResponse(w, r, code, Response{
		Success: code >= 200 && code < 300,
		Data:    payload,
	})
}

func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	resp := Response{
		Error: "Internal server error",
		Kind:  errors.KindInternal,
	}

	var appErr *errors.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		resp.Error = appErr.Message
		resp.Kind = appErr.Kind
		resp.Backend = appErr.Backend
	}

	entry := middleware.GetLogger(r.Context()).WithError(err).WithField("status", code)
	if appErr != nil {
		entry = entry.WithField("op", appErr.Op)
	}
	if code >= 500 {
		entry.Error("Request error")
	} else {
		entry.Info("Request rejected")
	}

	writeResponse(w, r, code, resp)
}

func writeResponse(w http.ResponseWriter, r *http.Request, code int, resp Response) {
	resp.RequestID = middleware.GetRequestID(r.Context())
	resp.Timestamp = time.Now().UTC()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to encode response")
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		return errors.InvalidInput("readJSON", err, "Invalid JSON format")
	}
	return nil
}

// videoIDParam reads the job id from the path, or from ?video_id= for the
// stage endpoints.
func videoIDParam(r *http.Request) (string, error) {
	if id := r.PathValue("id"); id != "" {
		return id, nil
	}
	if id := r.URL.Query().Get("video_id"); id != "" {
		return id, nil
	}
	return "", errors.InvalidInput("videoIDParam", nil, "video_id is required")
}
