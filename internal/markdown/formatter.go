// Package markdown polishes raw extracted text into clean markdown using a
// remote text-generation model, splitting oversized inputs into parts that
// are formatted concurrently and reassembled in order.
package markdown

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/mdforge/mdforge/internal/apierr"
)

// systemPrompt instructs the model to format without inventing content.
const systemPrompt = "You are a markdown formatting assistant. Convert the provided raw text " +
	"into clean, well-structured markdown. Use headings, lists, code blocks, and emphasis " +
	"where appropriate. Preserve all factual content. Do not add information not present " +
	"in the source. Output only the markdown, no preamble."

// Sizing constants for the formatting model.
const (
	// defaultContextTokens is the input window budgeted per request.
	defaultContextTokens = 16384

	// reservedTokens is held back for the system prompt, part framing,
	// and response headroom.
	reservedTokens = 4096

	// charsPerToken is a conservative estimate for English text.
	charsPerToken = 4

	// defaultMaxOutputTokens caps the formatted response size.
	defaultMaxOutputTokens = 8192

	// defaultModel is the text-generation model used for formatting.
	defaultModel = openai.GPT4oMini
)

// defaultMaxChunkChars is the character budget per request, derived from
// the token budget so the two cannot drift apart.
const defaultMaxChunkChars = (defaultContextTokens - reservedTokens) * charsPerToken

// Context describes the content being formatted, so the model can frame it.
type Context struct {
	Title       string
	Source      string
	ContentType string
}

// Formatter converts raw extracted text into clean markdown.
type Formatter interface {
	Format(ctx context.Context, rawText string, meta Context) (string, error)
}

// chatCompleter is the slice of the OpenAI client used for formatting.
// *openai.Client implements it implicitly.
type chatCompleter interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Compile-time interface compliance checks.
var (
	_ Formatter     = (*OpenAIFormatter)(nil)
	_ chatCompleter = (*openai.Client)(nil)
)

// OpenAIFormatter formats text using the OpenAI chat completion API.
type OpenAIFormatter struct {
	client        chatCompleter
	model         string
	maxChunkChars int
}

// Option configures an OpenAIFormatter.
type Option func(*OpenAIFormatter)

// WithModel sets the formatting model.
func WithModel(model string) Option {
	return func(f *OpenAIFormatter) { f.model = model }
}

// WithMaxChunkChars sets the per-request character budget.
func WithMaxChunkChars(n int) Option {
	return func(f *OpenAIFormatter) {
		if n > 0 {
			f.maxChunkChars = n
		}
	}
}

// withChatCompleter sets a custom chat completer (for testing).
func withChatCompleter(c chatCompleter) Option {
	return func(f *OpenAIFormatter) { f.client = c }
}

// NewOpenAIFormatter creates a formatter over the given client.
func NewOpenAIFormatter(client *openai.Client, opts ...Option) *OpenAIFormatter {
	f := &OpenAIFormatter{
		client:        client,
		model:         defaultModel,
		maxChunkChars: defaultMaxChunkChars,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Format converts raw text into markdown. Inputs within the character
// budget go out as one request; oversized inputs are split at markdown
// boundaries, formatted concurrently, and joined in input order.
func (f *OpenAIFormatter) Format(ctx context.Context, rawText string, meta Context) (string, error) {
	if len(rawText) <= f.maxChunkChars {
		return f.formatPart(ctx, rawText, meta, 1, 1)
	}
	return f.formatChunked(ctx, rawText, meta)
}

// formatPart issues one formatting request. part/total label the piece's
// position so the model preserves continuity framing across parts.
func (f *OpenAIFormatter) formatPart(ctx context.Context, text string, meta Context, part, total int) (string, error) {
	prompt := systemPrompt
	if total > 1 {
		prompt = fmt.Sprintf("%s\n\n%s", systemPrompt, partFraming(part, total))
	}

	title := meta.Title
	if title == "" {
		title = "Unknown"
	}
	source := meta.Source
	if source == "" {
		source = "Unknown"
	}

	user := fmt.Sprintf("Convert this %s content into clean markdown:\n\nTitle: %s\nSource: %s\n\n---\n\n%s",
		meta.ContentType, title, source, text)

	resp, err := f.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:               f.model,
		MaxCompletionTokens: defaultMaxOutputTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompt},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: 0, // deterministic output for reproducibility
	})
	if err != nil {
		return "", apierr.Classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from API")
	}
	return resp.Choices[0].Message.Content, nil
}

// partFraming labels a piece's position in a multi-part input.
func partFraming(part, total int) string {
	return fmt.Sprintf(`IMPORTANT: The input was split into multiple parts due to length.
You are formatting part %d of %d. Format this part following the rules above;
the output will be concatenated with the other parts.
Do not add a main title (H1) unless this is part 1.`, part, total)
}
