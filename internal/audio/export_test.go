package audio

// Exports for testing. These allow black-box tests to reach internal
// helpers without widening the public API.

var ParseDuration = parseDuration

// NewTestTool creates a Tool with injected dependencies, bypassing path checks.
func NewTestTool(ffmpegPath string, cmd commandRunner, statter fileStatter) *Tool {
	return &Tool{
		ffmpegPath: ffmpegPath,
		cmd:        cmd,
		statter:    statter,
	}
}
