// Package transcribe converts audio files into transcripts via a remote
// transcription service, orchestrating compression and chunking so
// arbitrarily long audio fits the service's upload limits.
package transcribe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mdforge/mdforge/internal/apierr"
)

// Transcription model and format identifiers.
// The diarization parameters are not yet supported by go-openai, so the
// diarized path talks to the API over plain HTTP.
const (
	// ModelPlain is the model used for plain transcription.
	ModelPlain = openai.Whisper1

	// ModelDiarize is the transcription model with speaker identification.
	ModelDiarize = "gpt-4o-transcribe-diarize"

	// formatDiarizedJSON is the response format for diarized transcription.
	formatDiarizedJSON = "diarized_json"

	// chunkingStrategyAuto lets the service determine internal chunking
	// boundaries. Required by the diarization model for inputs over 30s.
	chunkingStrategyAuto = "auto"

	// transcriptionURL is the API endpoint for audio transcription.
	transcriptionURL = "https://api.openai.com/v1/audio/transcriptions"
)

// Segment is one speaker-attributed span of transcript.
// Timestamps are in seconds; chunk-local until the orchestrator re-bases them.
type Segment struct {
	Start   float64
	End     float64
	Text    string
	Speaker string
}

// Result is a normalized transcription response.
// Segments is populated in diarized mode (and, coarsely, in plain mode when
// the service provides timestamps). Speakers is the de-duplicated list of
// distinct segment speakers in order of first appearance.
type Result struct {
	Text     string
	Segments []Segment
	Speakers []string
}

// WarnFunc is a callback for non-fatal warnings.
// Set to nil to suppress, or provide a custom handler.
type WarnFunc func(msg string)

// defaultWarnFunc writes warnings to stderr.
func defaultWarnFunc(msg string) {
	fmt.Fprintln(os.Stderr, msg)
}

// Transcriber converts a single audio file to a transcript.
type Transcriber interface {
	// Transcribe performs plain transcription without speaker attribution.
	Transcribe(ctx context.Context, audioPath string) (*Result, error)

	// TranscribeDiarized performs speaker-attributed transcription.
	// Hints must already be cleaned and validated.
	TranscribeDiarized(ctx context.Context, audioPath string, hints SpeakerHints) (*Result, error)
}

// audioTranscriber is the slice of the OpenAI client used for plain
// transcription. *openai.Client implements it implicitly.
type audioTranscriber interface {
	CreateTranscription(ctx context.Context, req openai.AudioRequest) (openai.AudioResponse, error)
}

// httpDoer abstracts the HTTP client for testing.
type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Compile-time interface compliance checks.
var (
	_ Transcriber      = (*OpenAITranscriber)(nil)
	_ audioTranscriber = (*openai.Client)(nil)
)

// OpenAITranscriber transcribes audio using the OpenAI transcription API.
type OpenAITranscriber struct {
	client     audioTranscriber
	httpClient httpDoer
	apiKey     string
	warn       WarnFunc
}

// TranscriberOption configures an OpenAITranscriber.
type TranscriberOption func(*OpenAITranscriber)

// WithHTTPClient sets a custom HTTP client (for testing).
func WithHTTPClient(c httpDoer) TranscriberOption {
	return func(t *OpenAITranscriber) { t.httpClient = c }
}

// WithWarnFunc sets a callback for warning messages.
func WithWarnFunc(fn WarnFunc) TranscriberOption {
	return func(t *OpenAITranscriber) { t.warn = fn }
}

// NewOpenAITranscriber creates a transcriber over the given client.
// apiKey is required for diarization requests, which use direct HTTP.
func NewOpenAITranscriber(client *openai.Client, apiKey string, opts ...TranscriberOption) *OpenAITranscriber {
	t := &OpenAITranscriber{
		client:     client,
		httpClient: &http.Client{Timeout: 5 * time.Minute},
		apiKey:     apiKey,
		warn:       defaultWarnFunc,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transcribe performs plain transcription, requesting verbose JSON so the
// service returns coarse timestamped segments alongside the full text.
func (t *OpenAITranscriber) Transcribe(ctx context.Context, audioPath string) (*Result, error) {
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    ModelPlain,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, apierr.Classify(err)
	}

	result := &Result{Text: resp.Text}
	for _, seg := range resp.Segments {
		result.Segments = append(result.Segments, Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		})
	}
	return result, nil
}

// TranscribeDiarized performs diarized transcription via direct HTTP,
// because go-openai does not expose response_format=diarized_json,
// chunking_strategy, or the known-speaker parameters.
func (t *OpenAITranscriber) TranscribeDiarized(ctx context.Context, audioPath string, hints SpeakerHints) (*Result, error) {
	if err := hints.Validate(); err != nil {
		return nil, err
	}

	// Names paired with reference clips become known-speaker parameters.
	// Names alone are never sent: the service would reject unmatched names,
	// so they are applied locally after the fact.
	var references []string
	if len(hints.References) > 0 {
		resolved, err := resolveReferences(hints.References)
		if err != nil {
			return nil, err
		}
		references = resolved
	}

	body, contentType, err := buildDiarizeForm(audioPath, hints.Names, references)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, transcriptionURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+t.apiKey)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return nil, apierr.Classify(err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp.StatusCode, respBody)
	}

	result, err := parseDiarizeResponse(respBody)
	if err != nil {
		return nil, err
	}

	// Local name application happens only when no references were sent;
	// with references the service already returns the caller's names.
	if len(references) == 0 && len(hints.Names) > 0 {
		result.Segments = applySpeakerNames(result.Segments, hints.Names, t.warn)
		result.Speakers = distinctSpeakers(result.Segments)
	}
	return result, nil
}

// audioMIMETypes maps upload extensions to MIME types. Unknown extensions
// fall back to application/octet-stream; the service sniffs formats itself,
// so being permissive here costs nothing.
var audioMIMETypes = map[string]string{
	".flac": "audio/flac",
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".mp4":  "audio/mp4",
	".mpeg": "audio/mpeg",
	".mpga": "audio/mpeg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".webm": "audio/webm",
}

// mimeForAudio returns the MIME type for an audio filename.
func mimeForAudio(filename string) string {
	if mimeType, ok := audioMIMETypes[strings.ToLower(filepath.Ext(filename))]; ok {
		return mimeType
	}
	return "application/octet-stream"
}

// buildDiarizeForm assembles the multipart request body for diarized
// transcription. The audio is uploaded as a named file with an inferred
// MIME type so the service can identify the container.
func buildDiarizeForm(audioPath string, names, references []string) (*bytes.Buffer, string, error) {
	file, err := os.Open(audioPath) // #nosec G304 -- audioPath comes from internal chunking
	if err != nil {
		return nil, "", fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	filename := filepath.Base(audioPath)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, filename))
	header.Set("Content-Type", mimeForAudio(filename))
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, "", fmt.Errorf("failed to copy file to form: %w", err)
	}

	fields := map[string]string{
		"model":             ModelDiarize,
		"response_format":   formatDiarizedJSON,
		"chunking_strategy": chunkingStrategyAuto,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, "", fmt.Errorf("failed to write %s field: %w", key, err)
		}
	}

	if len(references) > 0 {
		for _, name := range names {
			if err := writer.WriteField("known_speaker_names[]", name); err != nil {
				return nil, "", fmt.Errorf("failed to write speaker name: %w", err)
			}
		}
		for _, ref := range references {
			if err := writer.WriteField("known_speaker_references[]", ref); err != nil {
				return nil, "", fmt.Errorf("failed to write speaker reference: %w", err)
			}
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}
	return &body, writer.FormDataContentType(), nil
}

// diarizeResponse mirrors the service's diarized transcription response.
type diarizeResponse struct {
	Text     string `json:"text"`
	Segments []struct {
		ID      string  `json:"id"`
		Start   float64 `json:"start"`
		End     float64 `json:"end"`
		Text    string  `json:"text"`
		Speaker string  `json:"speaker"`
	} `json:"segments"`
}

// parseDiarizeResponse normalizes the diarized JSON response: segment text
// is trimmed and missing speaker labels get a generic placeholder.
func parseDiarizeResponse(body []byte) (*Result, error) {
	var resp diarizeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	result := &Result{Text: resp.Text}
	for _, seg := range resp.Segments {
		speaker := seg.Speaker
		if speaker == "" {
			speaker = "Speaker"
		}
		result.Segments = append(result.Segments, Segment{
			Start:   seg.Start,
			End:     seg.End,
			Text:    strings.TrimSpace(seg.Text),
			Speaker: speaker,
		})
	}
	result.Speakers = distinctSpeakers(result.Segments)
	return result, nil
}

// errorResponse mirrors the service's error envelope.
type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error"`
}

// parseHTTPError classifies a non-200 response into apierr sentinels,
// keeping the backend's message intact.
func parseHTTPError(statusCode int, body []byte) error {
	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("HTTP %d: %s", statusCode, body)
	}

	msg := errResp.Error.Message
	if msg == "" {
		msg = string(body)
	}
	return apierr.FromStatus(statusCode, msg)
}
