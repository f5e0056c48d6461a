package convert

import (
	"path/filepath"
	"slices"
	"strings"
)

// audioExts are audio container extensions handled by the media converter.
var audioExts = map[string]bool{
	".aac":  true,
	".flac": true,
	".m4a":  true,
	".mp3":  true,
	".ogg":  true,
	".wav":  true,
	".wma":  true,
}

// videoExts are video container extensions handled by the media converter.
// The audio track is extracted before transcription.
var videoExts = map[string]bool{
	".avi":  true,
	".flv":  true,
	".m4v":  true,
	".mkv":  true,
	".mov":  true,
	".mp4":  true,
	".webm": true,
	".wmv":  true,
}

// IsAudioPath reports whether the path has a supported audio extension.
func IsAudioPath(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

// IsVideoPath reports whether the path has a supported video extension.
func IsVideoPath(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

// supportedMediaList returns the supported extensions sorted and joined,
// for deterministic error messages.
func supportedMediaList() string {
	exts := make([]string, 0, len(audioExts)+len(videoExts))
	for ext := range audioExts {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	for ext := range videoExts {
		exts = append(exts, strings.TrimPrefix(ext, "."))
	}
	slices.Sort(exts)
	return strings.Join(exts, ", ")
}
