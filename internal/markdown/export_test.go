package markdown

// Exports for testing.

var WithChatCompleter = withChatCompleter

const DefaultMaxChunkChars = defaultMaxChunkChars
