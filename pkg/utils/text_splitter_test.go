package utils

import (
	"strings"
	"testing"
)

func TestSplitTextShortInputSingleChunk(t *testing.T) {
	chunks := SplitText("short text", 100, 20)
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0] != "short text" {
		t.Errorf("chunk mangled: %q", chunks[0])
	}
}

func TestSplitTextOverlapPreservesBoundaries(t *testing.T) {
	text := strings.Repeat("abcdefghij", 30) // 300 chars
	chunks := SplitText(text, 100, 20)

	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}
	for i, c := range chunks {
		if len(c) > 100 {
			t.Errorf("chunk %d exceeds size: %d", i, len(c))
		}
	}
	// Each chunk after the first starts with the tail of the previous one.
	for i := 1; i < len(chunks); i++ {
		prev := chunks[i-1]
		tail := prev[len(prev)-20:]
		if !strings.HasPrefix(chunks[i], tail) {
			t.Errorf("chunk %d does not overlap previous chunk", i)
		}
	}
}

func TestSplitTextCoversWholeInput(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks := SplitText(text, 100, 0)

	var rebuilt strings.Builder
	for _, c := range chunks {
		rebuilt.WriteString(c)
	}
	if rebuilt.String() != text {
		t.Errorf("chunks with zero overlap should reassemble the input")
	}
}

func TestSplitTextOverlapLargerThanChunk(t *testing.T) {
	text := strings.Repeat("y", 300)
	chunks := SplitText(text, 50, 80)
	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	// Degenerate overlap falls back to stepping a full chunk, so the
	// split still terminates and covers the input.
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Errorf("last chunk should end the input")
	}
}

func TestSplitTextMultibyteRunesNotCut(t *testing.T) {
	text := strings.Repeat("日本語テキスト", 40)
	chunks := SplitText(text, 50, 10)
	for i, c := range chunks {
		if !strings.HasPrefix(text, chunks[0]) {
			t.Fatalf("first chunk misaligned")
		}
		for _, r := range c {
			if r == '�' {
				t.Errorf("chunk %d contains a broken rune", i)
			}
		}
	}
}
