package transcribe

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// MaxKnownSpeakers is the most known-speaker name/reference pairs the
// diarization endpoint accepts per request.
const MaxKnownSpeakers = 4

// SpeakerHints carries optional caller-supplied speaker identities.
// Names without references are applied locally after transcription;
// names paired with references are sent to the service for known-speaker
// matching.
type SpeakerHints struct {
	Names      []string
	References []string
}

// IsZero reports whether no hints were supplied.
func (h SpeakerHints) IsZero() bool {
	return len(h.Names) == 0 && len(h.References) == 0
}

// cleanList trims entries and drops empty ones.
func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Clean returns a copy of the hints with entries trimmed and empties removed.
func (h SpeakerHints) Clean() SpeakerHints {
	return SpeakerHints{
		Names:      cleanList(h.Names),
		References: cleanList(h.References),
	}
}

// Validate enforces the diarization parameter invariants. It runs before
// any remote call or file I/O so failures leave no partial side effects.
func (h SpeakerHints) Validate() error {
	if len(h.References) > 0 {
		if len(h.Names) == 0 {
			return fmt.Errorf("%w: references require speaker names so each clip can be matched to a name", ErrSpeakerPairing)
		}
		if len(h.Names) != len(h.References) {
			return fmt.Errorf("%w: got %d names and %d references; supply the same number of each",
				ErrSpeakerPairing, len(h.Names), len(h.References))
		}
	}
	if len(h.Names) > MaxKnownSpeakers {
		return fmt.Errorf("%w: %d names supplied, maximum is %d",
			ErrSpeakerLimit, len(h.Names), MaxKnownSpeakers)
	}
	return nil
}

// referenceMIMETypes maps reference clip extensions to data URI MIME types.
var referenceMIMETypes = map[string]string{
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
}

// resolveReference turns a speaker reference into a self-describing data URI.
// Data URIs pass through unchanged; anything else is treated as a local file
// path, read, and base64-encoded with a MIME type derived from its extension.
func resolveReference(reference string) (string, error) {
	if strings.HasPrefix(reference, "data:") {
		return reference, nil
	}

	mimeType, ok := referenceMIMETypes[strings.ToLower(filepath.Ext(reference))]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrReferenceFormat, reference)
	}

	data, err := os.ReadFile(reference) // #nosec G304 -- reference path is caller-supplied by design
	if err != nil {
		return "", fmt.Errorf("failed to read speaker reference %s: %w", reference, err)
	}

	return fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data)), nil
}

// resolveReferences resolves every reference clip to a data URI.
func resolveReferences(references []string) ([]string, error) {
	resolved := make([]string, 0, len(references))
	for _, ref := range references {
		uri, err := resolveReference(ref)
		if err != nil {
			return nil, err
		}
		resolved = append(resolved, uri)
	}
	return resolved, nil
}

// applySpeakerNames maps distinct diarized labels, in order of first
// appearance, one-to-one onto the supplied names. Labels beyond the name
// count keep their raw diarized labels; this is a best-effort cosmetic
// pass, so a count mismatch is reported through warn, never an error.
func applySpeakerNames(segments []Segment, names []string, warn WarnFunc) []Segment {
	if len(names) == 0 || len(segments) == 0 {
		return segments
	}

	mapping := make(map[string]string)
	next := 0
	for _, seg := range segments {
		if _, seen := mapping[seg.Speaker]; seen {
			continue
		}
		if next < len(names) {
			mapping[seg.Speaker] = names[next]
			next++
		} else {
			mapping[seg.Speaker] = seg.Speaker
		}
	}

	detected := len(mapping)
	if detected != len(names) && warn != nil {
		warn(fmt.Sprintf("supplied %d speaker names but diarization detected %d speakers", len(names), detected))
	}

	renamed := make([]Segment, len(segments))
	for i, seg := range segments {
		seg.Speaker = mapping[seg.Speaker]
		renamed[i] = seg
	}
	return renamed
}

// distinctSpeakers returns the de-duplicated speaker labels in order of
// first appearance.
func distinctSpeakers(segments []Segment) []string {
	seen := make(map[string]bool)
	var speakers []string
	for _, seg := range segments {
		if seg.Speaker == "" || seen[seg.Speaker] {
			continue
		}
		seen[seg.Speaker] = true
		speakers = append(speakers, seg.Speaker)
	}
	return speakers
}
