package markdown

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
)

// formatChunked splits oversized text, formats every part concurrently
// (parts are independent, unlike audio chunks there is no overlap to
// deduplicate), and joins the outputs in input order.
func (f *OpenAIFormatter) formatChunked(ctx context.Context, rawText string, meta Context) (string, error) {
	parts := SplitText(rawText, f.maxChunkChars)
	outputs := make([]string, len(parts))

	g, ctx := errgroup.WithContext(ctx)
	for i, part := range parts {
		i, part := i, part
		g.Go(func() error {
			out, err := f.formatPart(ctx, part, meta, i+1, len(parts))
			if err != nil {
				return err
			}
			outputs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	return strings.Join(outputs, "\n\n"), nil
}

// SplitText divides text into pieces of at most budget characters.
// Cut points prefer, in order: the last markdown heading in the window,
// the last blank line, the last newline — each only when past the window's
// halfway point, so pieces stay reasonably balanced — and finally a hard
// cut at the budget.
func SplitText(text string, budget int) []string {
	if budget <= 0 || len(text) <= budget {
		return []string{text}
	}

	var parts []string
	rest := text
	for len(rest) > budget {
		cut := splitPoint(rest[:budget])
		parts = append(parts, rest[:cut])
		rest = rest[cut:]
	}
	if rest != "" {
		parts = append(parts, rest)
	}
	return parts
}

// splitPoint picks the cut position within one window. A boundary is used
// only when it falls past the halfway point; otherwise the next-priority
// boundary is tried, down to a hard cut at the window end.
func splitPoint(window string) int {
	half := len(window) / 2

	if idx := strings.LastIndex(window, "\n#"); idx > half {
		return idx + 1 // the heading starts the next piece
	}
	if idx := strings.LastIndex(window, "\n\n"); idx > half {
		return idx + 2
	}
	if idx := strings.LastIndex(window, "\n"); idx > half {
		return idx + 1
	}
	return len(window)
}
