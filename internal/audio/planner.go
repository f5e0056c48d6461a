// Package audio sizes, compresses, and slices audio so it fits the remote
// transcription API's upload constraints. Planning is pure arithmetic;
// probing and transcoding shell out to FFmpeg.
package audio

// Upload sizing constants.
const (
	// HardMaxBytes is the transcription API's hard upload limit (25 MiB).
	HardMaxBytes = 26_214_400

	// SafeMaxBytes is the byte budget used for planning. It sits below
	// HardMaxBytes to absorb VBR fluctuation and container overhead.
	SafeMaxBytes = 24_000_000

	// MinBitrateKbps is the floor for target bitrate.
	// Below this, transcription quality degrades unacceptably.
	MinBitrateKbps = 32

	// SpeechSampleRate is the sample rate the transcription service
	// processes natively; downsampling to it loses nothing for speech.
	SpeechSampleRate = 16_000
)

// maxSingleChunkSeconds is the longest duration that fits in SafeMaxBytes
// at MinBitrateKbps mono. Derived from the same constants so the threshold
// cannot drift: 32 kbps = 4000 bytes/s, 24_000_000 / 4000 = 6000s.
const maxSingleChunkSeconds = SafeMaxBytes / (MinBitrateKbps * 1000 / 8)

// Chunking constants for audio longer than maxSingleChunkSeconds.
const (
	// chunkSeconds is the duration of each chunk when splitting long audio.
	chunkSeconds = 1500

	// chunkOverlapSeconds is the overlap between adjacent chunks, so words
	// at a boundary land in at least one chunk.
	chunkOverlapSeconds = 15
)

// ChunkBoundary is a planned time window within a longer audio file.
// Boundaries overlap by chunkOverlapSeconds and their union covers the
// whole file.
type ChunkBoundary struct {
	Index           int
	StartSeconds    float64
	DurationSeconds float64
}

// End returns the boundary's end position in seconds.
func (b ChunkBoundary) End() float64 {
	return b.StartSeconds + b.DurationSeconds
}

// IsOversized reports whether a raw audio buffer exceeds the safety-margined
// byte budget and needs compression or chunking before upload.
func IsOversized(byteLen int64) bool {
	return byteLen > SafeMaxBytes
}

// CalculateTargetBitrate returns the constant bitrate (kbps) that fits
// durationSeconds of audio into maxBytes, floored at MinBitrateKbps.
// durationSeconds must be positive.
func CalculateTargetBitrate(durationSeconds float64, maxBytes int64) int {
	kbps := int(float64(maxBytes) * 8 / durationSeconds / 1000)
	return max(kbps, MinBitrateKbps)
}

// NeedsChunking reports whether the audio is too long to fit the byte
// budget even at the minimum bitrate, so it must be split into chunks.
func NeedsChunking(durationSeconds float64) bool {
	return durationSeconds > maxSingleChunkSeconds
}

// CalculateChunkBoundaries plans chunk windows for the given total duration.
// Durations at or below the chunking threshold get a single whole-file
// boundary. Longer durations get fixed-size windows advancing by
// chunkSeconds-chunkOverlapSeconds; the final window is clamped to the
// remaining duration so coverage reaches the end without reading past it.
func CalculateChunkBoundaries(totalSeconds float64) []ChunkBoundary {
	if !NeedsChunking(totalSeconds) {
		return []ChunkBoundary{{Index: 0, StartSeconds: 0, DurationSeconds: totalSeconds}}
	}

	var boundaries []ChunkBoundary
	start := 0.0
	for index := 0; start < totalSeconds; index++ {
		duration := min(float64(chunkSeconds), totalSeconds-start)
		boundaries = append(boundaries, ChunkBoundary{
			Index:           index,
			StartSeconds:    start,
			DurationSeconds: duration,
		})
		start += chunkSeconds - chunkOverlapSeconds
	}

	return boundaries
}
