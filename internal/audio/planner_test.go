package audio_test

import (
	"testing"

	"github.com/mdforge/mdforge/internal/audio"
)

// ---------------------------------------------------------------------------
// IsOversized - safety-margin byte budget
// ---------------------------------------------------------------------------

func TestIsOversized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		byteLen int64
		want    bool
	}{
		{name: "small buffer", byteLen: 1_000_000, want: false},
		{name: "at the safe boundary", byteLen: 24_000_000, want: false},
		{name: "one byte over", byteLen: 24_000_001, want: true},
		{name: "over the hard limit too", byteLen: 30_000_000, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := audio.IsOversized(tt.byteLen); got != tt.want {
				t.Errorf("IsOversized(%d) = %v, want %v", tt.byteLen, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// CalculateTargetBitrate - sizing arithmetic
// ---------------------------------------------------------------------------

func TestCalculateTargetBitrate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration float64
		maxBytes int64
		want     int
	}{
		{
			name:     "30 minutes fits at about 106 kbps",
			duration: 1800,
			maxBytes: audio.SafeMaxBytes,
			want:     106,
		},
		{
			name:     "3000 seconds gives exactly 64 kbps",
			duration: 3000,
			maxBytes: audio.SafeMaxBytes,
			want:     64,
		},
		{
			name:     "very long audio floors at the minimum",
			duration: 100_000,
			maxBytes: audio.SafeMaxBytes,
			want:     audio.MinBitrateKbps,
		},
		{
			name:     "short audio gets a high bitrate",
			duration: 60,
			maxBytes: audio.SafeMaxBytes,
			want:     3200,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := audio.CalculateTargetBitrate(tt.duration, tt.maxBytes)
			if got != tt.want {
				t.Errorf("CalculateTargetBitrate(%v, %d) = %d, want %d",
					tt.duration, tt.maxBytes, got, tt.want)
			}
		})
	}
}

func TestCalculateTargetBitrate_NeverBelowMinimum(t *testing.T) {
	t.Parallel()

	durations := []float64{1, 60, 600, 6000, 6001, 50_000, 1_000_000}
	for _, d := range durations {
		if got := audio.CalculateTargetBitrate(d, audio.SafeMaxBytes); got < audio.MinBitrateKbps {
			t.Errorf("CalculateTargetBitrate(%v) = %d, below minimum %d", d, got, audio.MinBitrateKbps)
		}
	}
}

// ---------------------------------------------------------------------------
// NeedsChunking - threshold derived from budget and minimum bitrate
// ---------------------------------------------------------------------------

func TestNeedsChunking(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		duration float64
		want     bool
	}{
		{name: "one hour", duration: 3600, want: false},
		{name: "at the boundary", duration: 6000, want: false},
		{name: "just over", duration: 6001, want: true},
		{name: "two hours", duration: 7200, want: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := audio.NeedsChunking(tt.duration); got != tt.want {
				t.Errorf("NeedsChunking(%v) = %v, want %v", tt.duration, got, tt.want)
			}
		})
	}
}

// ---------------------------------------------------------------------------
// CalculateChunkBoundaries - overlap and coverage invariants
// ---------------------------------------------------------------------------

func TestCalculateChunkBoundaries_SingleChunkBelowThreshold(t *testing.T) {
	t.Parallel()

	for _, duration := range []float64{60, 600, 2700, 5999, 6000} {
		boundaries := audio.CalculateChunkBoundaries(duration)
		if len(boundaries) != 1 {
			t.Fatalf("CalculateChunkBoundaries(%v) returned %d boundaries, want 1", duration, len(boundaries))
		}
		b := boundaries[0]
		if b.Index != 0 || b.StartSeconds != 0 || b.DurationSeconds != duration {
			t.Errorf("CalculateChunkBoundaries(%v)[0] = %+v, want whole-file boundary", duration, b)
		}
	}
}

func TestCalculateChunkBoundaries_TwoHours(t *testing.T) {
	t.Parallel()

	const total = 7200.0
	boundaries := audio.CalculateChunkBoundaries(total)

	// 1500s windows advancing by 1485s: starts at 0, 1485, 2970, 4455, 5940.
	if len(boundaries) != 5 {
		t.Fatalf("got %d boundaries, want 5", len(boundaries))
	}

	wantStarts := []float64{0, 1485, 2970, 4455, 5940}
	for i, b := range boundaries {
		if b.Index != i {
			t.Errorf("boundaries[%d].Index = %d, want %d", i, b.Index, i)
		}
		if b.StartSeconds != wantStarts[i] {
			t.Errorf("boundaries[%d].StartSeconds = %v, want %v", i, b.StartSeconds, wantStarts[i])
		}
	}

	last := boundaries[len(boundaries)-1]
	if last.End() < total {
		t.Errorf("last boundary ends at %v, must reach %v", last.End(), total)
	}
}

func TestCalculateChunkBoundaries_OverlapAndCoverage(t *testing.T) {
	t.Parallel()

	for _, total := range []float64{6001, 7200, 10_000, 36_000} {
		boundaries := audio.CalculateChunkBoundaries(total)
		if len(boundaries) < 2 {
			t.Fatalf("CalculateChunkBoundaries(%v) returned %d boundaries, want several", total, len(boundaries))
		}

		for i := 1; i < len(boundaries); i++ {
			prev := boundaries[i-1]
			curr := boundaries[i]
			// Each boundary starts strictly before the previous one ends.
			if curr.StartSeconds >= prev.End() {
				t.Errorf("total %v: boundary %d starts at %v, not before previous end %v",
					total, i, curr.StartSeconds, prev.End())
			}
		}

		last := boundaries[len(boundaries)-1]
		if last.End() < total {
			t.Errorf("total %v: coverage ends at %v, short of total", total, last.End())
		}
		// Clamped at the source: never read past the end.
		if last.End() > total {
			t.Errorf("total %v: last boundary reads past the end (%v)", total, last.End())
		}
	}
}
