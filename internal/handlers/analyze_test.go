package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vidgrab/backend/internal/videos"
)

type providerStub struct {
	info     videos.VideoInfo
	err      error
	reject   bool
	panicMsg string
	calls    int
	lastURL  string
}

func (p *providerStub) Validate(string) bool {
	return !p.reject
}

func (p *providerStub) Lookup(ctx context.Context, url string) (videos.VideoInfo, error) {
	p.calls++
	p.lastURL = url
	if p.panicMsg != "" {
		panic(p.panicMsg)
	}
	if p.err != nil {
		return videos.VideoInfo{}, p.err
	}
	return p.info, nil
}

type reporterStub struct {
	errs []error
	tags []map[string]string
}

func (r *reporterStub) Report(ctx context.Context, err error, tags map[string]string) {
	r.errs = append(r.errs, err)
	r.tags = append(r.tags, tags)
}

func int64Ptr(n int64) *int64 { return &n }

func sampleInfo() videos.VideoInfo {
	return videos.VideoInfo{
		Title:           "Never Gonna Give You Up",
		Thumbnail:       "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg",
		DurationSeconds: 212,
		Author:          "Rick Astley",
		Formats: []videos.Format{
			{ID: "18", QualityLabel: "360p", Extension: "mp4", FileSize: int64Ptr(11245611), StreamURL: "https://rr1.example/videoplayback?itag=18&expire=1", Media: videos.MediaKind{Known: true, Audio: true, Video: true}},
			{ID: "137", QualityLabel: "1080p", Extension: "mp4", FileSize: int64Ptr(99), StreamURL: "https://rr1.example/137", Media: videos.MediaKind{Known: true, Video: true}},
			{ID: "140", Extension: "m4a", FileSize: int64Ptr(3), StreamURL: "https://rr1.example/140", Media: videos.MediaKind{Known: true, Audio: true}},
			{ID: "22", QualityLabel: "720p", Extension: "mp4", StreamURL: "https://rr1.example/22", Media: videos.MediaKind{Known: true, Audio: true, Video: true}},
			{ID: "hls-1", QualityLabel: "480p", Extension: "mp4", FileSize: int64Ptr(500), StreamURL: "https://rr1.example/hls"},
			{ID: "hls-2", QualityLabel: "240p", Extension: "mp4", StreamURL: "https://rr1.example/hls2"},
		},
	}
}

func postAnalyze(t *testing.T, handler AnalyzeHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.Analyze(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestAnalyzeSuccess(t *testing.T) {
	provider := &providerStub{info: sampleInfo()}
	handler := AnalyzeHandler{Provider: provider, ProviderName: "stub"}

	rec := postAnalyze(t, handler, `{"url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", rec.Code, http.StatusOK)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("unexpected content type %q", got)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected CORS header on success got %q", got)
	}
	if provider.lastURL != "https://www.youtube.com/watch?v=dQw4w9WgXcQ" {
		t.Fatalf("unexpected provider url %q", provider.lastURL)
	}

	var resp analyzeResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Success {
		t.Fatal("expected success")
	}

	want := []outputFormat{
		{FormatID: "18", Quality: "360p", Extension: "mp4", Filesize: 11245611, DownloadURL: "https://rr1.example/videoplayback?itag=18&expire=1"},
		{FormatID: "22", Quality: "720p", Extension: "mp4", Filesize: 0, DownloadURL: "https://rr1.example/22"},
		{FormatID: "hls-1", Quality: "480p", Extension: "mp4", Filesize: 500, DownloadURL: "https://rr1.example/hls"},
	}
	if len(resp.Formats) != len(want) {
		t.Fatalf("expected %d formats got %d: %+v", len(want), len(resp.Formats), resp.Formats)
	}
	for i := range want {
		if resp.Formats[i] != want[i] {
			t.Fatalf("format %d: got %+v want %+v", i, resp.Formats[i], want[i])
		}
	}

	wantInfo := outputVideoInfo{
		Title:     "Never Gonna Give You Up",
		Thumbnail: "https://i.ytimg.com/vi/dQw4w9WgXcQ/default.jpg",
		Duration:  "3:32",
		Author:    "Rick Astley",
	}
	if resp.VideoInfo != wantInfo {
		t.Fatalf("unexpected video info %+v", resp.VideoInfo)
	}

	if !bytes.Contains(rec.Body.Bytes(), []byte("itag=18&expire=1")) {
		t.Fatalf("expected unescaped stream url in body %s", rec.Body.String())
	}
}

func TestAnalyzeUnknownSizeIsZeroNotOmitted(t *testing.T) {
	info := sampleInfo()
	info.Formats = info.Formats[3:4]
	handler := AnalyzeHandler{Provider: &providerStub{info: info}}

	rec := postAnalyze(t, handler, `{"url":"youtu.be/dQw4w9WgXcQ"}`)
	body := decodeBody(t, rec)

	formats := body["formats"].([]any)
	if len(formats) != 1 {
		t.Fatalf("expected 1 format got %d", len(formats))
	}
	entry := formats[0].(map[string]any)
	size, ok := entry["filesize"]
	if !ok || size != float64(0) {
		t.Fatalf("expected explicit zero filesize got %v (present=%v)", size, ok)
	}
}

func TestAnalyzeEmptyFormatsEncodesArray(t *testing.T) {
	info := sampleInfo()
	info.Formats = nil
	handler := AnalyzeHandler{Provider: &providerStub{info: info}}

	rec := postAnalyze(t, handler, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`"formats":[]`)) {
		t.Fatalf("expected empty formats array got %s", rec.Body.String())
	}
}

func TestAnalyzeInvalidURL(t *testing.T) {
	bodies := []string{
		`{"url":"https://vimeo.com/123"}`,
		`{"url":"https://youtube.com/"}`,
		`{"url":""}`,
		`{}`,
		`{"url":null}`,
		`{"url":42}`,
		`{"url":["https://youtu.be/dQw4w9WgXcQ"]}`,
		`[]`,
		`"https://youtu.be/dQw4w9WgXcQ"`,
		`42`,
		`{"url":"not a url"}`,
	}

	for _, body := range bodies {
		provider := &providerStub{info: sampleInfo()}
		rec := postAnalyze(t, AnalyzeHandler{Provider: provider}, body)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400 got %d", body, rec.Code)
		}
		if got := rec.Body.String(); got != "{\"success\":false,\"error\":\"Invalid YouTube URL\"}\n" {
			t.Fatalf("%s: unexpected body %q", body, got)
		}
		if rec.Header().Get("Access-Control-Allow-Origin") != "" {
			t.Fatalf("%s: expected no CORS header on 400", body)
		}
		if provider.calls != 0 {
			t.Fatalf("%s: provider must not be called for invalid input", body)
		}
	}
}

func TestAnalyzeProviderValidatorNarrows(t *testing.T) {
	provider := &providerStub{reject: true}
	rec := postAnalyze(t, AnalyzeHandler{Provider: provider}, `{"url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
	if provider.calls != 0 {
		t.Fatal("expected provider lookup to be skipped")
	}
}

func TestAnalyzeFailuresMapToGeneric500(t *testing.T) {
	cases := []struct {
		name      string
		provider  *providerStub
		body      string
		wantCalls int
	}{
		{"provider error", &providerStub{err: errors.New("signature decipher failed: secret detail")}, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`, 1},
		{"provider panic", &providerStub{panicMsg: "index out of range"}, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`, 1},
		{"malformed json", &providerStub{}, `{"url":`, 0},
		{"empty body", &providerStub{}, ``, 0},
		{"null body", &providerStub{}, `null`, 0},
		{"trailing data", &providerStub{info: sampleInfo()}, `{"url":"https://youtu.be/dQw4w9WgXcQ"} garbage`, 0},
		{"second document", &providerStub{info: sampleInfo()}, `{"url":"https://youtu.be/dQw4w9WgXcQ"}{}`, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reporter := &reporterStub{}
			handler := AnalyzeHandler{Provider: tc.provider, ProviderName: "stub", Reporter: reporter}

			rec := postAnalyze(t, handler, tc.body)

			if rec.Code != http.StatusInternalServerError {
				t.Fatalf("expected 500 got %d", rec.Code)
			}
			if tc.provider.calls != tc.wantCalls {
				t.Fatalf("expected %d provider lookups got %d", tc.wantCalls, tc.provider.calls)
			}
			if got := rec.Body.String(); got != "{\"success\":false,\"error\":\"Failed to analyze video\"}\n" {
				t.Fatalf("unexpected body %q", got)
			}
			if rec.Header().Get("Access-Control-Allow-Origin") != "" {
				t.Fatal("expected no CORS header on 500")
			}
			if len(reporter.errs) != 1 {
				t.Fatalf("expected root cause to be reported once got %d", len(reporter.errs))
			}
			if reporter.tags[0]["provider"] != "stub" {
				t.Fatalf("unexpected reporter tags %v", reporter.tags[0])
			}
		})
	}
}

func TestAnalyzeReportsOriginalCause(t *testing.T) {
	cause := errors.New("network unreachable")
	reporter := &reporterStub{}
	handler := AnalyzeHandler{Provider: &providerStub{err: cause}, Reporter: reporter}

	rec := postAnalyze(t, handler, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

	if strings.Contains(rec.Body.String(), "network") {
		t.Fatalf("root cause leaked into response: %s", rec.Body.String())
	}
	if len(reporter.errs) != 1 || !errors.Is(reporter.errs[0], cause) {
		t.Fatalf("expected original cause to reach reporter got %v", reporter.errs)
	}
}

func TestAnalyzeWithoutProvider(t *testing.T) {
	rec := postAnalyze(t, AnalyzeHandler{}, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 got %d", rec.Code)
	}

	rec = postAnalyze(t, AnalyzeHandler{}, `{"url":"https://vimeo.com/1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	handler := AnalyzeHandler{Provider: &providerStub{info: sampleInfo()}}
	body := `{"url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`

	first := postAnalyze(t, handler, body)
	second := postAnalyze(t, handler, body)

	if !bytes.Equal(first.Body.Bytes(), second.Body.Bytes()) {
		t.Fatalf("expected identical bodies:\n%s\n%s", first.Body.String(), second.Body.String())
	}
}

func TestAnalyzeDurationFormatting(t *testing.T) {
	cases := map[int]string{0: "0:00", 65: "1:05", 3599: "59:59", 3600: "60:00"}

	for seconds, want := range cases {
		info := sampleInfo()
		info.DurationSeconds = seconds
		rec := postAnalyze(t, AnalyzeHandler{Provider: &providerStub{info: info}}, `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)

		var resp analyzeResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if resp.VideoInfo.Duration != want {
			t.Fatalf("duration for %ds: got %q want %q", seconds, resp.VideoInfo.Duration, want)
		}
	}
}

func TestAnalyzeAcceptsAnyMethod(t *testing.T) {
	handler := AnalyzeHandler{Provider: &providerStub{info: sampleInfo()}}

	req := httptest.NewRequest(http.MethodPut, "/api/analyze", strings.NewReader(`{"url":"https://youtu.be/dQw4w9WgXcQ"}`))
	rec := httptest.NewRecorder()
	handler.Analyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
