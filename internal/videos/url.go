package videos

import "regexp"

var youTubeURLPattern = regexp.MustCompile(`^(https?://)?(www\.)?(youtube\.com|youtu\.be)/.+$`)

// IsYouTubeURL reports whether raw looks like a youtube.com or youtu.be URL with
// a non-empty path. The scheme and "www." prefix are optional.
func IsYouTubeURL(raw string) bool {
	return youTubeURLPattern.MatchString(raw)
}
