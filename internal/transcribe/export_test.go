package transcribe

// Exports for testing. These allow black-box tests to reach internal
// helpers without widening the public API.

var (
	ApplySpeakerNames = applySpeakerNames
	ResolveReference  = resolveReference
	DistinctSpeakers  = distinctSpeakers
)

// NewTestTranscriber creates an OpenAITranscriber with injected dependencies.
func NewTestTranscriber(client audioTranscriber, httpClient httpDoer, apiKey string, warn WarnFunc) *OpenAITranscriber {
	return &OpenAITranscriber{
		client:     client,
		httpClient: httpClient,
		apiKey:     apiKey,
		warn:       warn,
	}
}
