package convert

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mdforge/mdforge/internal/format"
	"github.com/mdforge/mdforge/internal/markdown"
	"github.com/mdforge/mdforge/internal/transcribe"
)

// transcriptionPipeline is the slice of the transcription orchestrator the
// media converter drives. *transcribe.Pipeline implements it.
type transcriptionPipeline interface {
	Transcribe(ctx context.Context, audioPath string, opts transcribe.Options) (*transcribe.Result, error)
}

var _ transcriptionPipeline = (*transcribe.Pipeline)(nil)

// audioExtractor extracts the audio track of a video file.
type audioExtractor interface {
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
}

// VerboseFunc receives progress messages. Nil suppresses them.
type VerboseFunc func(msg string)

// Media converts audio and video files into markdown transcripts.
type Media struct {
	pipeline  transcriptionPipeline
	formatter markdown.Formatter
	extractor audioExtractor
	verbose   VerboseFunc
}

// Compile-time interface compliance check.
var _ Converter = (*Media)(nil)

// MediaOption configures a Media converter.
type MediaOption func(*Media)

// WithVerbose sets a callback for progress messages.
func WithVerbose(fn VerboseFunc) MediaOption {
	return func(m *Media) { m.verbose = fn }
}

// NewMedia creates a media converter.
func NewMedia(pipeline transcriptionPipeline, formatter markdown.Formatter, extractor audioExtractor, opts ...MediaOption) *Media {
	m := &Media{
		pipeline:  pipeline,
		formatter: formatter,
		extractor: extractor,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// log emits a progress message when verbose output is enabled.
func (m *Media) log(msg string) {
	if m.verbose != nil {
		m.verbose(msg)
	}
}

// Convert transcribes a media file and formats the transcript as markdown.
// Video inputs have their audio track extracted first; the intermediate
// file is removed on the way out regardless of outcome.
func (m *Media) Convert(ctx context.Context, input string, opts Options) (*Result, error) {
	ext := strings.ToLower(filepath.Ext(input))
	isAudio := audioExts[ext]
	isVideo := videoExts[ext]
	if !isAudio && !isVideo {
		return nil, fmt.Errorf("%w: %s (supported: %s)", ErrUnsupportedFormat, ext, supportedMediaList())
	}

	kind := "audio"
	if isVideo {
		kind = "video"
	}
	m.log(fmt.Sprintf("processing %s file: %s", kind, input))

	audioPath := input
	if isVideo {
		tempDir, err := os.MkdirTemp("", "mdforge-media-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
		defer func() { _ = os.RemoveAll(tempDir) }() // best-effort cleanup

		audioPath = filepath.Join(tempDir, "audio.mp3")
		m.log("extracting audio track...")
		if err := m.extractor.ExtractAudio(ctx, input, audioPath); err != nil {
			return nil, err
		}
	}

	result, err := m.pipeline.Transcribe(ctx, audioPath, transcribe.Options{
		Diarize:           opts.Diarize,
		SpeakerNames:      opts.Speakers,
		SpeakerReferences: opts.SpeakerReferences,
	})
	if err != nil {
		return nil, err
	}

	diarized := len(result.Speakers) > 0
	rawText := result.Text
	contentType := "video/audio transcription"
	if diarized {
		rawText = FormatDiarizedSegments(result.Segments)
		contentType = "video/audio transcription (diarized)"
		m.log(fmt.Sprintf("transcription: %d chars, %d speakers", len(rawText), len(result.Speakers)))
	} else {
		m.log(fmt.Sprintf("transcription: %d chars", len(rawText)))
	}

	title := filepath.Base(input)
	md, err := m.formatter.Format(ctx, rawText, markdown.Context{
		Title:       title,
		Source:      input,
		ContentType: contentType,
	})
	if err != nil {
		return nil, err
	}

	metadata := map[string]any{}
	if diarized {
		metadata["diarized"] = true
		metadata["speakers"] = result.Speakers
		metadata["transcriptionModel"] = transcribe.ModelDiarize
	}

	if opts.Frontmatter {
		md = ApplyFrontmatter(md, Frontmatter{
			Title:    title,
			Source:   input,
			Type:     kind,
			Diarized: diarized,
			Speakers: result.Speakers,
		})
	}

	return &Result{
		Title:      title,
		Markdown:   md,
		RawContent: rawText,
		Metadata:   metadata,
	}, nil
}

// FormatDiarizedSegments renders speaker-attributed segments as markdown.
// A **Speaker** [timestamp] header is emitted only when the speaker
// changes, so consecutive segments from one speaker share a turn.
func FormatDiarizedSegments(segments []transcribe.Segment) string {
	var lines []string
	var currentSpeaker string
	started := false

	for _, seg := range segments {
		if !started || seg.Speaker != currentSpeaker {
			currentSpeaker = seg.Speaker
			if started {
				lines = append(lines, "")
			}
			lines = append(lines, fmt.Sprintf("**%s** [%s]", currentSpeaker, format.Timestamp(seg.Start)))
			started = true
		}
		lines = append(lines, seg.Text)
	}

	return strings.Join(lines, "\n")
}
