package audio

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/mdforge/mdforge/internal/ffmpeg"
)

// External tool timeouts.
const (
	// probeTimeout bounds duration probing. Probing only reads headers,
	// so anything longer means a wedged tool.
	probeTimeout = 30 * time.Second

	// transcodeTimeout bounds compression and chunk extraction.
	transcodeTimeout = 300 * time.Second
)

// durationRe matches the Duration line FFmpeg prints to stderr, e.g.
// "Duration: 01:02:03.45". FFmpeg has no dedicated probe verb here: it
// exits non-zero when invoked without an output, but still reports the
// container duration in its diagnostics.
var durationRe = regexp.MustCompile(`Duration:\s*(\d+):(\d+):(\d+)\.(\d+)`)

// Tool probes and transcodes audio by shelling out to FFmpeg.
type Tool struct {
	ffmpegPath string

	// Injectable dependencies (defaults to OS implementations).
	cmd     commandRunner
	statter fileStatter
}

// ToolOption configures a Tool.
type ToolOption func(*Tool)

// WithCommandRunner sets the command runner (for testing).
func WithCommandRunner(r commandRunner) ToolOption {
	return func(t *Tool) { t.cmd = r }
}

// WithFileStatter sets the file statter (for testing).
func WithFileStatter(s fileStatter) ToolOption {
	return func(t *Tool) { t.statter = s }
}

// NewTool creates a Tool bound to the given FFmpeg binary.
func NewTool(ffmpegPath string, opts ...ToolOption) (*Tool, error) {
	if ffmpegPath == "" {
		return nil, fmt.Errorf("ffmpegPath cannot be empty: %w", ffmpeg.ErrNotFound)
	}

	t := &Tool{
		ffmpegPath: ffmpegPath,
		cmd:        osCommandRunner{},
		statter:    osFileStatter{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t, nil
}

// Duration returns the container duration of an audio file in seconds.
// Fails with ErrProbeFailed naming the path if the duration cannot be
// determined within the probe timeout.
func (t *Tool) Duration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	// FFmpeg exits non-zero when no output is specified, but still prints
	// the duration to stderr. Parse the output regardless of exit status.
	output, err := t.cmd.CombinedOutput(ctx, t.ffmpegPath, []string{
		"-hide_banner", "-i", path,
	})
	if err != nil && len(output) == 0 {
		return 0, fmt.Errorf("%w for %s: %v", ErrProbeFailed, path, err)
	}

	seconds, ok := parseDuration(string(output))
	if !ok {
		return 0, fmt.Errorf("%w for %s", ErrProbeFailed, path)
	}
	return seconds, nil
}

// FileSize returns the byte size of a file on disk.
func (t *Tool) FileSize(path string) (int64, error) {
	info, err := t.statter.Stat(path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// parseDuration extracts seconds from FFmpeg's "Duration: HH:MM:SS.cc" line.
func parseDuration(output string) (float64, bool) {
	matches := durationRe.FindStringSubmatch(output)
	if matches == nil {
		return 0, false
	}

	h, _ := strconv.Atoi(matches[1])
	m, _ := strconv.Atoi(matches[2])
	s, _ := strconv.Atoi(matches[3])
	cs, _ := strconv.Atoi(matches[4])

	return float64(h)*3600 + float64(m)*60 + float64(s) + float64(cs)/100, true
}

// Compress re-encodes audio to mono 16kHz MP3 at a constant bitrate.
func (t *Tool) Compress(ctx context.Context, inputPath, outputPath string, bitrateKbps int) error {
	return t.transcode(ctx, []string{
		"-y",
		"-i", inputPath,
		"-ac", "1",
		"-ar", strconv.Itoa(SpeechSampleRate),
		"-b:a", fmt.Sprintf("%dk", bitrateKbps),
		"-f", "mp3",
		outputPath,
	})
}

// ExtractChunk extracts a time window from the input, applying the same
// mono/16kHz/target-bitrate re-encode as Compress.
func (t *Tool) ExtractChunk(ctx context.Context, inputPath, outputPath string, startSeconds, durationSeconds float64, bitrateKbps int) error {
	return t.transcode(ctx, []string{
		"-y",
		"-ss", formatSeconds(startSeconds),
		"-t", formatSeconds(durationSeconds),
		"-i", inputPath,
		"-ac", "1",
		"-ar", strconv.Itoa(SpeechSampleRate),
		"-b:a", fmt.Sprintf("%dk", bitrateKbps),
		"-f", "mp3",
		outputPath,
	})
}

// ExtractAudio extracts the audio track of a media file to MP3.
// Used for video inputs and for containers the diarization endpoint does
// not accept natively.
func (t *Tool) ExtractAudio(ctx context.Context, inputPath, outputPath string) error {
	return t.transcode(ctx, []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-ac", "1",
		"-ar", strconv.Itoa(SpeechSampleRate),
		"-f", "mp3",
		outputPath,
	})
}

// transcode runs FFmpeg with the transcode timeout and wraps failures in
// ErrTranscodeFailed. Transcode errors are never retried automatically.
func (t *Tool) transcode(ctx context.Context, args []string) error {
	ctx, cancel := context.WithTimeout(ctx, transcodeTimeout)
	defer cancel()

	output, err := t.cmd.CombinedOutput(ctx, t.ffmpegPath, args)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: timed out after %v", ErrTranscodeFailed, transcodeTimeout)
		}
		return fmt.Errorf("%w: %v\nOutput: %s", ErrTranscodeFailed, err, output)
	}
	return nil
}

// formatSeconds formats a position for FFmpeg -ss/-t arguments.
func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 3, 64)
}
