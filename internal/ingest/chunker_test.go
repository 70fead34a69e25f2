package ingest

import (
	"strings"
	"testing"
)

func TestSplitText_Empty(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{name: "empty string", text: ""},
		{name: "whitespace only", text: "   \n\t  "},
		{name: "punctuation only", text: "... !!! ???"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunks := SplitText(tt.text, DefaultChunkSize)
			if len(chunks) != 0 {
				t.Errorf("SplitText() = %v, want no chunks", chunks)
			}
		})
	}
}

func TestSplitText_SingleSentence(t *testing.T) {
	chunks := SplitText("The library opens at eight.", DefaultChunkSize)

	if len(chunks) != 1 {
		t.Fatalf("SplitText() returned %d chunks, want 1", len(chunks))
	}
	if chunks[0] != "The library opens at eight." {
		t.Errorf("SplitText() = %q, want sentence with terminal period", chunks[0])
	}
}

func TestSplitText_RespectsBound(t *testing.T) {
	// Many short sentences that together far exceed the bound.
	var b strings.Builder
	for i := 0; i < 200; i++ {
		b.WriteString("The hostel mess serves dinner at seven in the evening. ")
	}

	maxSize := 200
	chunks := SplitText(b.String(), maxSize)

	if len(chunks) < 2 {
		t.Fatalf("SplitText() returned %d chunks, want multiple", len(chunks))
	}
	for i, chunk := range chunks {
		if len(chunk) > maxSize {
			t.Errorf("chunk %d has length %d, exceeds max %d", i, len(chunk), maxSize)
		}
		if strings.TrimSpace(chunk) == "" {
			t.Errorf("chunk %d is blank", i)
		}
	}
}

func TestSplitText_GreedyPacking(t *testing.T) {
	// Two short sentences fit into one chunk under a generous bound.
	chunks := SplitText("First fact here. Second fact here.", DefaultChunkSize)

	if len(chunks) != 1 {
		t.Fatalf("SplitText() returned %d chunks, want 1", len(chunks))
	}
	if !strings.Contains(chunks[0], "First fact here") || !strings.Contains(chunks[0], "Second fact here") {
		t.Errorf("SplitText() = %q, want both sentences packed together", chunks[0])
	}
}

func TestSplitText_OversizedSentence(t *testing.T) {
	// A single sentence longer than the bound is emitted whole rather
	// than split mid-sentence.
	long := strings.Repeat("word ", 100) + "end"
	chunks := SplitText(long+".", 50)

	if len(chunks) != 1 {
		t.Fatalf("SplitText() returned %d chunks, want 1", len(chunks))
	}
	if len(chunks[0]) <= 50 {
		t.Errorf("oversized sentence should be emitted whole, got length %d", len(chunks[0]))
	}
}

func TestSplitText_CoversAllSentences(t *testing.T) {
	text := "Alpha is first. Beta is second! Gamma is third? Delta is fourth."
	chunks := SplitText(text, 30)

	joined := strings.Join(chunks, " ")
	for _, want := range []string{"Alpha is first", "Beta is second", "Gamma is third", "Delta is fourth"} {
		if !strings.Contains(joined, want) {
			t.Errorf("SplitText() dropped sentence %q", want)
		}
	}
}

func TestSplitText_ZeroMaxSizeUsesDefault(t *testing.T) {
	chunks := SplitText("A question about fees.", 0)
	if len(chunks) != 1 {
		t.Fatalf("SplitText() returned %d chunks, want 1", len(chunks))
	}
}
