package videos

import "context"

// VideoInfo is the provider-neutral view of a video's metadata and streams.
type VideoInfo struct {
	Title           string
	Thumbnail       string
	DurationSeconds int
	Author          string
	Formats         []Format
}

// Format describes one stream variant reported by a provider.
type Format struct {
	ID           string
	QualityLabel string
	Extension    string
	// FileSize is nil when the provider does not know the size.
	FileSize  *int64
	StreamURL string
	Media     MediaKind
}

// MediaKind records which tracks a format carries. Known is false when the
// provider does not report track information.
type MediaKind struct {
	Known bool
	Audio bool
	Video bool
}

// Combined reports whether the format is usable for combined audio/video playback.
// Providers that report track information are judged on it; otherwise both a
// known size and a quality label are required.
func (f Format) Combined() bool {
	if f.Media.Known {
		return f.Media.Audio && f.Media.Video
	}
	return f.FileSize != nil && f.QualityLabel != ""
}

// Size returns the file size in bytes, or zero when unknown.
func (f Format) Size() int64 {
	if f.FileSize == nil {
		return 0
	}
	return *f.FileSize
}

// Provider resolves video URLs into metadata and stream formats.
type Provider interface {
	// Validate reports whether the provider recognises the URL.
	Validate(url string) bool
	Lookup(ctx context.Context, url string) (VideoInfo, error)
}
