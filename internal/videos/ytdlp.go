package videos

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner executes external commands and returns stdout bytes.
type CommandRunner func(ctx context.Context, binary string, args ...string) ([]byte, error)

// YTDLPProvider fetches metadata using the yt-dlp CLI tool.
type YTDLPProvider struct {
	Binary  string
	Args    []string
	Run     CommandRunner
	Timeout time.Duration
}

// NewYTDLPProvider constructs a Provider that shells out to yt-dlp.
func NewYTDLPProvider(binary string, timeout time.Duration) *YTDLPProvider {
	if strings.TrimSpace(binary) == "" {
		binary = "yt-dlp"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &YTDLPProvider{
		Binary:  binary,
		Args:    []string{"--dump-single-json", "--no-warnings", "--no-playlist", "--skip-download"},
		Run:     defaultCommandRunner,
		Timeout: timeout,
	}
}

// Validate rejects values yt-dlp would interpret as command line options.
func (p *YTDLPProvider) Validate(url string) bool {
	url = strings.TrimSpace(url)
	return url != "" && !strings.HasPrefix(url, "-")
}

type ytdlpFormat struct {
	FormatID       string   `json:"format_id"`
	FormatNote     string   `json:"format_note"`
	Resolution     string   `json:"resolution"`
	Ext            string   `json:"ext"`
	Filesize       *float64 `json:"filesize"`
	FilesizeApprox *float64 `json:"filesize_approx"`
	URL            string   `json:"url"`
	VCodec         string   `json:"vcodec"`
	ACodec         string   `json:"acodec"`
}

type ytdlpPayload struct {
	Title     string        `json:"title"`
	Thumbnail string        `json:"thumbnail"`
	Duration  float64       `json:"duration"`
	Uploader  string        `json:"uploader"`
	Channel   string        `json:"channel"`
	Formats   []ytdlpFormat `json:"formats"`
}

// Lookup executes yt-dlp for the provided URL and parses the JSON response.
func (p *YTDLPProvider) Lookup(ctx context.Context, url string) (VideoInfo, error) {
	if p == nil {
		return VideoInfo{}, ErrProviderUnavailable
	}
	run := p.Run
	if run == nil {
		run = defaultCommandRunner
	}

	execCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	args := append([]string{}, p.Args...)
	args = append(args, url)

	out, err := run(execCtx, p.Binary, args...)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("yt-dlp fetch: %w", err)
	}

	var payload ytdlpPayload
	if err := json.Unmarshal(out, &payload); err != nil {
		return VideoInfo{}, fmt.Errorf("parse yt-dlp response: %w", err)
	}

	if payload.Title == "" && payload.Thumbnail == "" && len(payload.Formats) == 0 {
		return VideoInfo{}, errors.New("yt-dlp returned empty metadata")
	}

	author := payload.Uploader
	if author == "" {
		author = payload.Channel
	}

	info := VideoInfo{
		Title:           payload.Title,
		Thumbnail:       payload.Thumbnail,
		DurationSeconds: int(math.Floor(payload.Duration)),
		Author:          author,
		Formats:         make([]Format, 0, len(payload.Formats)),
	}
	for _, f := range payload.Formats {
		info.Formats = append(info.Formats, f.toFormat())
	}

	return info, nil
}

func (f ytdlpFormat) toFormat() Format {
	quality := f.FormatNote
	if quality == "" {
		quality = f.Resolution
	}

	size := f.Filesize
	if size == nil {
		size = f.FilesizeApprox
	}
	var fileSize *int64
	if size != nil {
		n := int64(*size)
		fileSize = &n
	}

	// yt-dlp uses "none" for a missing track and omits the codec when unknown.
	media := MediaKind{Known: f.VCodec != "" || f.ACodec != ""}
	if media.Known {
		media.Video = f.VCodec != "" && f.VCodec != "none"
		media.Audio = f.ACodec != "" && f.ACodec != "none"
	}

	return Format{
		ID:           f.FormatID,
		QualityLabel: quality,
		Extension:    f.Ext,
		FileSize:     fileSize,
		StreamURL:    f.URL,
		Media:        media,
	}
}

func defaultCommandRunner(ctx context.Context, binary string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...)
	return cmd.Output()
}
