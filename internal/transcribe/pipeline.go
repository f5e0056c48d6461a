package transcribe

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mdforge/mdforge/internal/audio"
	"github.com/mdforge/mdforge/internal/format"
)

// diarizeAcceptedExts lists containers the diarization endpoint accepts
// natively. Anything else is transcoded to MP3 first.
var diarizeAcceptedExts = map[string]bool{
	".m4a":  true,
	".mp3":  true,
	".mp4":  true,
	".mpeg": true,
	".mpga": true,
	".wav":  true,
	".webm": true,
}

// MediaTool is the slice of the audio toolbox the pipeline drives.
// *audio.Tool implements it.
type MediaTool interface {
	Duration(ctx context.Context, path string) (float64, error)
	FileSize(path string) (int64, error)
	Compress(ctx context.Context, inputPath, outputPath string, bitrateKbps int) error
	ExtractChunk(ctx context.Context, inputPath, outputPath string, startSeconds, durationSeconds float64, bitrateKbps int) error
	ExtractAudio(ctx context.Context, inputPath, outputPath string) error
}

var _ MediaTool = (*audio.Tool)(nil)

// Options configures one pipeline run.
type Options struct {
	// Diarize enables speaker attribution. Supplying any speaker hints
	// forces it on regardless of this setting.
	Diarize bool

	// SpeakerNames are display names for detected speakers. Without
	// references they are mapped locally onto diarized labels in order of
	// first appearance.
	SpeakerNames []string

	// SpeakerReferences are short reference clips (paths or data URIs)
	// for known-speaker matching. Must pair one-to-one with SpeakerNames.
	SpeakerReferences []string
}

// Pipeline runs the oversize/compress/chunk state machine over one audio
// asset and merges the per-chunk results.
//
// Chunks are processed sequentially: each chunk's extraction and
// transcription completes before the next begins, which bounds remote and
// local load and keeps accumulation trivial to reason about (dedup
// re-sorts by timestamp regardless).
type Pipeline struct {
	tool        MediaTool
	transcriber Transcriber

	// Injectable dependencies (defaults to OS implementations).
	tempDir tempDirCreator
	files   fileRemover
	warn    WarnFunc
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithTempDirCreator sets the temp directory creator (for testing).
func WithTempDirCreator(t tempDirCreator) PipelineOption {
	return func(p *Pipeline) { p.tempDir = t }
}

// WithFileRemover sets the file remover (for testing).
func WithFileRemover(f fileRemover) PipelineOption {
	return func(p *Pipeline) { p.files = f }
}

// WithPipelineWarnFunc sets a callback for warning messages.
func WithPipelineWarnFunc(fn WarnFunc) PipelineOption {
	return func(p *Pipeline) { p.warn = fn }
}

// NewPipeline creates a Pipeline over the given tool and transcriber.
func NewPipeline(tool MediaTool, transcriber Transcriber, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		tool:        tool,
		transcriber: transcriber,
		tempDir:     osTempDirCreator{},
		files:       osFileRemover{},
		warn:        defaultWarnFunc,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Transcribe converts one audio file to a transcript, compressing or
// chunking it as needed to fit the upload budget.
//
// All intermediate files live in one temp directory removed on every exit
// path; removal failures never mask the primary outcome. No partial result
// is ever returned: a failed chunk aborts the whole asset.
func (p *Pipeline) Transcribe(ctx context.Context, audioPath string, opts Options) (*Result, error) {
	hints := SpeakerHints{Names: opts.SpeakerNames, References: opts.SpeakerReferences}.Clean()

	// Validation is local and immediate: fail before any file I/O or
	// remote call so no partial side effects occur.
	if err := hints.Validate(); err != nil {
		return nil, err
	}

	// Speaker hints imply intent to diarize, overriding an explicit
	// "don't diarize" preference.
	diarize := opts.Diarize || !hints.IsZero()
	if !opts.Diarize && !hints.IsZero() && p.warn != nil {
		p.warn("speaker options imply diarization; enabling it")
	}

	workDir, err := p.tempDir.MkdirTemp("", "mdforge-audio-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer func() { _ = p.files.RemoveAll(workDir) }() // best-effort cleanup on all exit paths

	// The diarization endpoint only accepts certain containers; transcode
	// to MP3 first when needed, regardless of size.
	if diarize && !diarizeAcceptedExts[strings.ToLower(filepath.Ext(audioPath))] {
		converted := filepath.Join(workDir, "audio.mp3")
		if err := p.tool.ExtractAudio(ctx, audioPath, converted); err != nil {
			return nil, err
		}
		audioPath = converted
	}

	size, err := p.tool.FileSize(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat audio file: %w", err)
	}

	if !audio.IsOversized(size) {
		return p.transcribeOne(ctx, audioPath, diarize, hints)
	}

	duration, err := p.tool.Duration(ctx, audioPath)
	if err != nil {
		return nil, err
	}

	if !audio.NeedsChunking(duration) {
		return p.compressAndTranscribe(ctx, workDir, audioPath, duration, diarize, hints)
	}

	return p.transcribeChunked(ctx, workDir, audioPath, duration, diarize, hints)
}

// compressAndTranscribe handles oversized-but-not-too-long audio with a
// single compression pass, which is cheaper than chunking.
func (p *Pipeline) compressAndTranscribe(ctx context.Context, workDir, audioPath string, duration float64, diarize bool, hints SpeakerHints) (*Result, error) {
	bitrate := audio.CalculateTargetBitrate(duration, audio.SafeMaxBytes)
	compressed := filepath.Join(workDir, "compressed.mp3")
	if err := p.tool.Compress(ctx, audioPath, compressed, bitrate); err != nil {
		return nil, err
	}

	size, err := p.tool.FileSize(compressed)
	if err != nil {
		return nil, fmt.Errorf("failed to stat compressed audio: %w", err)
	}
	// The bitrate math keeps compressed output under the hard limit;
	// landing over it is a defect, not an ordinary oversize condition.
	if size > audio.HardMaxBytes {
		return nil, fmt.Errorf("%w: %s at %d kbps for %s audio",
			audio.ErrCompressionInsufficient, format.Size(size), bitrate,
			format.Timestamp(duration))
	}

	return p.transcribeOne(ctx, compressed, diarize, hints)
}

// transcribeChunked splits the audio into overlapping chunks, transcribes
// them sequentially, re-bases segment timestamps, and merges the results.
func (p *Pipeline) transcribeChunked(ctx context.Context, workDir, audioPath string, duration float64, diarize bool, hints SpeakerHints) (*Result, error) {
	boundaries := audio.CalculateChunkBoundaries(duration)

	var segments []Segment
	texts := make([]string, 0, len(boundaries))

	for _, boundary := range boundaries {
		chunkPath := filepath.Join(workDir, fmt.Sprintf("chunk_%03d.mp3", boundary.Index))
		bitrate := audio.CalculateTargetBitrate(boundary.DurationSeconds, audio.SafeMaxBytes)

		if err := p.tool.ExtractChunk(ctx, audioPath, chunkPath, boundary.StartSeconds, boundary.DurationSeconds, bitrate); err != nil {
			return nil, fmt.Errorf("chunk %d: %w", boundary.Index, err)
		}

		result, err := p.transcribeOne(ctx, chunkPath, diarize, hints)
		if err != nil {
			return nil, fmt.Errorf("chunk %d: %w", boundary.Index, err)
		}

		texts = append(texts, result.Text)
		for _, seg := range result.Segments {
			// Rewrite chunk-local timestamps to global positions.
			seg.Start += boundary.StartSeconds
			seg.End += boundary.StartSeconds
			segments = append(segments, seg)
		}
	}

	if diarize {
		merged := DedupeSegments(segments)
		return &Result{
			Text:     joinSegmentTexts(merged),
			Segments: merged,
			Speakers: distinctSpeakers(merged),
		}, nil
	}

	return &Result{Text: strings.Join(texts, "\n\n")}, nil
}

// transcribeOne dispatches a single upload to the right transcription mode.
func (p *Pipeline) transcribeOne(ctx context.Context, audioPath string, diarize bool, hints SpeakerHints) (*Result, error) {
	if diarize {
		return p.transcriber.TranscribeDiarized(ctx, audioPath, hints)
	}
	return p.transcriber.Transcribe(ctx, audioPath)
}

// joinSegmentTexts rebuilds the full transcript text from merged segments.
func joinSegmentTexts(segments []Segment) string {
	parts := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg.Text != "" {
			parts = append(parts, seg.Text)
		}
	}
	return strings.Join(parts, " ")
}
