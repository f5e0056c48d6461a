package transcribe

import "errors"

// ErrAPIKeyMissing indicates OPENAI_API_KEY environment variable is not set.
var ErrAPIKeyMissing = errors.New("OPENAI_API_KEY environment variable not set")

// ErrSpeakerPairing indicates speaker names and reference clips were not
// supplied as matching pairs.
var ErrSpeakerPairing = errors.New("speaker names and references must be paired")

// ErrSpeakerLimit indicates more known speakers were supplied than the
// diarization endpoint supports.
var ErrSpeakerLimit = errors.New("too many known speakers")

// ErrReferenceFormat indicates a speaker reference clip has an unsupported format.
var ErrReferenceFormat = errors.New("unsupported speaker reference format")
