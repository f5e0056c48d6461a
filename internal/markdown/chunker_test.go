package markdown_test

import (
	"strings"
	"testing"

	"github.com/mdforge/mdforge/internal/markdown"
)

func TestSplitText(t *testing.T) {
	t.Parallel()

	t.Run("under budget stays whole", func(t *testing.T) {
		t.Parallel()
		parts := markdown.SplitText("short text", 100)
		if len(parts) != 1 || parts[0] != "short text" {
			t.Errorf("SplitText() = %v, want the input unsplit", parts)
		}
	})

	t.Run("prefers heading boundaries", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("a", 60) + "\n# Section\n" + strings.Repeat("b", 60)
		parts := markdown.SplitText(text, 80)
		if len(parts) < 2 {
			t.Fatalf("got %d parts, want a split", len(parts))
		}
		if !strings.HasPrefix(parts[1], "# Section") {
			t.Errorf("second part starts %q, want the heading to lead it", parts[1][:20])
		}
	})

	t.Run("falls back to blank lines", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("a", 60) + "\n\n" + strings.Repeat("b", 60)
		parts := markdown.SplitText(text, 80)
		if len(parts) != 2 {
			t.Fatalf("got %d parts, want 2", len(parts))
		}
		if !strings.HasPrefix(parts[1], "b") {
			t.Errorf("second part starts %q, want the paragraph after the blank line", parts[1][:10])
		}
	})

	t.Run("hard cut when no boundary exists", func(t *testing.T) {
		t.Parallel()
		text := strings.Repeat("a", 250)
		parts := markdown.SplitText(text, 100)
		if len(parts) != 3 {
			t.Fatalf("got %d parts, want 3", len(parts))
		}
		if len(parts[0]) != 100 || len(parts[1]) != 100 || len(parts[2]) != 50 {
			t.Errorf("part lengths = %d, %d, %d", len(parts[0]), len(parts[1]), len(parts[2]))
		}
	})

	t.Run("early boundaries are skipped for balance", func(t *testing.T) {
		t.Parallel()
		// The only newline sits in the first tenth of the window; cutting
		// there would leave a tiny piece, so a hard cut wins.
		text := strings.Repeat("a", 10) + "\n" + strings.Repeat("b", 200)
		parts := markdown.SplitText(text, 100)
		if len(parts[0]) != 100 {
			t.Errorf("first part length = %d, want a hard cut at the budget", len(parts[0]))
		}
	})
}

func TestSplitText_ConcatenationPreservesInput(t *testing.T) {
	t.Parallel()

	inputs := []string{
		strings.Repeat("word ", 100),
		"line one\nline two\n\npara two\n# Heading\nbody\n",
		strings.Repeat("x", 999),
		"a\n" + strings.Repeat("b", 50) + "\n\n" + strings.Repeat("c", 50) + "\n# H\n" + strings.Repeat("d", 50),
	}

	for _, budget := range []int{10, 37, 100} {
		for _, input := range inputs {
			parts := markdown.SplitText(input, budget)
			if got := strings.Join(parts, ""); got != input {
				t.Errorf("budget %d: concatenated parts differ from input", budget)
			}
			for i, part := range parts {
				if len(part) > budget {
					t.Errorf("budget %d: part %d has %d chars", budget, i, len(part))
				}
			}
		}
	}
}
