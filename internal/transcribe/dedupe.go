package transcribe

import (
	"math"
	"slices"
	"strings"
)

// dedupWindowSeconds is how close a candidate segment's start must be to
// the previously kept segment's end before text comparison happens.
// Intentionally much narrower than the 15s chunk overlap: near-duplicate
// transcriptions land within about a second of the seam, while the same
// speech legitimately continuing across a boundary does not.
const dedupWindowSeconds = 1.0

// DedupeSegments merges per-chunk segment lists (already shifted to global
// timestamps) into one chronologically ordered sequence with overlap
// duplicates removed. The operation is idempotent: running it on its own
// output changes nothing.
func DedupeSegments(segments []Segment) []Segment {
	if len(segments) == 0 {
		return nil
	}

	sorted := slices.Clone(segments)
	slices.SortStableFunc(sorted, func(a, b Segment) int {
		switch {
		case a.Start < b.Start:
			return -1
		case a.Start > b.Start:
			return 1
		default:
			return 0
		}
	})

	kept := make([]Segment, 0, len(sorted))
	for _, candidate := range sorted {
		if len(kept) > 0 {
			last := kept[len(kept)-1]
			if math.Abs(candidate.Start-last.End) <= dedupWindowSeconds &&
				isDuplicateText(candidate.Text, last.Text) {
				continue
			}
		}
		kept = append(kept, candidate)
	}
	return kept
}

// isDuplicateText reports whether two segment texts transcribe the same
// speech. Normalized (trimmed, lowercased) texts count as duplicates when
// equal or when one contains the other, since the overlap region may be
// transcribed partially by either chunk.
func isDuplicateText(a, b string) bool {
	na := strings.ToLower(strings.TrimSpace(a))
	nb := strings.ToLower(strings.TrimSpace(b))
	if na == "" || nb == "" {
		return na == nb
	}
	return strings.Contains(na, nb) || strings.Contains(nb, na)
}
