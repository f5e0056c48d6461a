package audio

import "errors"

// ErrProbeFailed indicates the duration of an audio file could not be determined.
var ErrProbeFailed = errors.New("could not determine audio duration")

// ErrTranscodeFailed indicates FFmpeg was unavailable or exited non-zero.
var ErrTranscodeFailed = errors.New("audio transcode failed")

// ErrCompressionInsufficient indicates compressed audio still exceeds the
// transcription API's hard upload limit. The byte-budget math makes this
// unreachable in practice; it is an internal invariant violation, not a
// user error.
var ErrCompressionInsufficient = errors.New("compressed audio still exceeds upload limit")
