package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/vidgrab/backend/internal/logging"
	"github.com/vidgrab/backend/internal/metrics"
	"github.com/vidgrab/backend/internal/videos"
)

const (
	errInvalidURL     = "Invalid YouTube URL"
	errAnalyzeFailed  = "Failed to analyze video"
	maxAnalyzeBodyLen = 64 << 10
)

// AnalyzeHandler resolves a YouTube URL into its combined playback formats.
type AnalyzeHandler struct {
	Provider     VideoProvider
	ProviderName string
	Reporter     ErrorReporter
}

type outputFormat struct {
	FormatID    string `json:"formatId"`
	Quality     string `json:"quality"`
	Extension   string `json:"extension"`
	Filesize    int64  `json:"filesize"`
	DownloadURL string `json:"downloadUrl"`
}

type outputVideoInfo struct {
	Title     string `json:"title"`
	Thumbnail string `json:"thumbnail"`
	Duration  string `json:"duration"`
	Author    string `json:"author"`
}

type analyzeResponse struct {
	Success   bool            `json:"success"`
	Formats   []outputFormat  `json:"formats"`
	VideoInfo outputVideoInfo `json:"videoInfo"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Analyze handles /api/analyze. Invalid URLs get 400; every other failure is
// answered with the same 500 body and its cause goes only to logs and the reporter.
func (h AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	defer func() {
		if rec := recover(); rec != nil {
			h.fail(ctx, w, fmt.Errorf("panic while analyzing: %v", rec))
		}
	}()

	url, err := requestURL(http.MaxBytesReader(w, r.Body, maxAnalyzeBodyLen))
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	if !h.validURL(url) {
		metrics.AnalyzeRequestsTotal.WithLabelValues(metrics.OutcomeInvalidInput).Inc()
		respondJSON(ctx, w, http.StatusBadRequest, errorResponse{Error: errInvalidURL})
		return
	}

	if h.Provider == nil {
		h.fail(ctx, w, videos.ErrProviderUnavailable)
		return
	}

	lookupCtx, span := logging.StartSpan(ctx, "provider.lookup")
	info, err := h.Provider.Lookup(lookupCtx, url)
	span.Fail(err)
	span.End()
	if err != nil {
		h.fail(ctx, w, err)
		return
	}

	resp := newAnalyzeResponse(info)
	metrics.AnalyzeRequestsTotal.WithLabelValues(metrics.OutcomeSuccess).Inc()
	metrics.AnalyzeFormatsReturned.Observe(float64(len(resp.Formats)))

	w.Header().Set("Access-Control-Allow-Origin", "*")
	respondJSON(ctx, w, http.StatusOK, resp)
}

// requestURL reads the "url" field from a single JSON document. The body must
// parse completely and must not be null; any other shape without a string
// "url" yields "", which fails validation.
func requestURL(body io.Reader) (string, error) {
	raw, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read request body: %w", err)
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", fmt.Errorf("decode request body: %w", err)
	}
	if payload == nil {
		return "", errors.New("decode request body: body is null")
	}

	fields, ok := payload.(map[string]any)
	if !ok {
		return "", nil
	}
	url, _ := fields["url"].(string)
	return url, nil
}

// validURL applies the local pattern first; the provider's own validator can
// only narrow it further.
func (h AnalyzeHandler) validURL(url string) bool {
	if !videos.IsYouTubeURL(url) {
		return false
	}
	if h.Provider != nil && !h.Provider.Validate(url) {
		return false
	}
	return true
}

func (h AnalyzeHandler) fail(ctx context.Context, w http.ResponseWriter, err error) {
	metrics.AnalyzeRequestsTotal.WithLabelValues(metrics.OutcomeFailure).Inc()

	logging.FromContext(ctx).Error("analyze video failed", "error", err, "provider", h.ProviderName)

	if h.Reporter != nil {
		h.Reporter.Report(ctx, err, map[string]string{"provider": h.ProviderName})
	}

	respondJSON(ctx, w, http.StatusInternalServerError, errorResponse{Error: errAnalyzeFailed})
}

func newAnalyzeResponse(info videos.VideoInfo) analyzeResponse {
	formats := make([]outputFormat, 0, len(info.Formats))
	for _, f := range info.Formats {
		if !f.Combined() {
			continue
		}
		formats = append(formats, outputFormat{
			FormatID:    f.ID,
			Quality:     f.QualityLabel,
			Extension:   f.Extension,
			Filesize:    f.Size(),
			DownloadURL: f.StreamURL,
		})
	}

	return analyzeResponse{
		Success: true,
		Formats: formats,
		VideoInfo: outputVideoInfo{
			Title:     info.Title,
			Thumbnail: info.Thumbnail,
			Duration:  videos.FormatDuration(info.DurationSeconds),
			Author:    info.Author,
		},
	}
}
