// Package convert turns content sources into normalized markdown.
// Format-specific extraction lives behind the Converter interface; this
// package ships the media (audio/video) converter built on the
// transcription pipeline.
package convert

import (
	"context"
	"errors"
)

// ErrUnsupportedFormat indicates the input's extension is not handled by
// the converter.
var ErrUnsupportedFormat = errors.New("unsupported format")

// Options configures a conversion.
type Options struct {
	// Diarize enables speaker attribution for media inputs.
	// Speaker hints force it on regardless.
	Diarize bool

	// Speakers are display names for detected speakers.
	Speakers []string

	// SpeakerReferences are reference clips (paths or data URIs) pinning
	// speaker identities, paired one-to-one with Speakers.
	SpeakerReferences []string

	// Frontmatter prepends YAML frontmatter to the markdown output.
	Frontmatter bool
}

// Result is the outcome of a conversion.
type Result struct {
	Title      string
	Markdown   string
	RawContent string
	Metadata   map[string]any
}

// Converter converts one input (file path or URL) into markdown.
// Non-media converters (web pages, documents, feeds) are external
// collaborators implementing this same interface.
type Converter interface {
	Convert(ctx context.Context, input string, opts Options) (*Result, error)
}
