package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/vidgrab/backend/internal/logging"
)

func respondJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	// Stream URLs carry query strings; keep "&" readable.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		logging.FromContext(ctx).Error("encode response body", "status", status, "error", err)
		return
	}

	if status >= http.StatusBadRequest && status < http.StatusInternalServerError {
		logging.FromContext(ctx).Warn("request returned client error", "status", status, "response", payload)
	}
}
