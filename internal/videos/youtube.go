package videos

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// youtubeClient is the subset of *youtube.Client used by LibraryProvider.
type youtubeClient interface {
	GetVideoContext(ctx context.Context, url string) (*youtube.Video, error)
	GetStreamURLContext(ctx context.Context, video *youtube.Video, format *youtube.Format) (string, error)
}

// LibraryProvider resolves metadata in-process with github.com/kkdai/youtube.
type LibraryProvider struct {
	client youtubeClient
}

// NewLibraryProvider returns a Provider backed by a fresh youtube.Client.
func NewLibraryProvider() *LibraryProvider {
	return &LibraryProvider{client: &youtube.Client{}}
}

// Validate accepts any URL or id from which the library can extract a video id.
func (p *LibraryProvider) Validate(url string) bool {
	_, err := youtube.ExtractVideoID(url)
	return err == nil
}

// Lookup fetches the video's player response and maps its formats.
func (p *LibraryProvider) Lookup(ctx context.Context, url string) (VideoInfo, error) {
	if p == nil || p.client == nil {
		return VideoInfo{}, ErrProviderUnavailable
	}

	video, err := p.client.GetVideoContext(ctx, url)
	if err != nil {
		return VideoInfo{}, fmt.Errorf("youtube fetch: %w", err)
	}
	if len(video.Thumbnails) == 0 {
		return VideoInfo{}, fmt.Errorf("youtube video %s has no thumbnails: %w", video.ID, ErrIncompleteMetadata)
	}

	info := VideoInfo{
		Title:           video.Title,
		Thumbnail:       video.Thumbnails[0].URL,
		DurationSeconds: int(video.Duration.Seconds()),
		Author:          video.Author,
		Formats:         make([]Format, 0, len(video.Formats)),
	}

	for i := range video.Formats {
		f := &video.Formats[i]

		format := Format{
			ID:           strconv.Itoa(f.ItagNo),
			QualityLabel: f.QualityLabel,
			Extension:    mimeExtension(f.MimeType),
			StreamURL:    f.URL,
			Media: MediaKind{
				Known: true,
				Audio: f.AudioChannels > 0,
				Video: f.Width > 0 || f.Height > 0,
			},
		}
		if f.ContentLength > 0 {
			n := f.ContentLength
			format.FileSize = &n
		}

		// Ciphered formats need the player's signature routine; only resolve
		// the ones that survive the playback filter.
		if format.StreamURL == "" && format.Combined() {
			format.StreamURL, err = p.client.GetStreamURLContext(ctx, video, f)
			if err != nil {
				return VideoInfo{}, fmt.Errorf("resolve stream url for itag %d: %w", f.ItagNo, err)
			}
		}

		info.Formats = append(info.Formats, format)
	}

	return info, nil
}

// mimeExtension maps "video/mp4; codecs=..." to "mp4".
func mimeExtension(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	_, subtype, ok := strings.Cut(strings.TrimSpace(mime), "/")
	if !ok || subtype == "" {
		return ""
	}
	if subtype == "3gpp" {
		return "3gp"
	}
	return subtype
}
