package chunker

import (
	"strings"
	"testing"
)

func TestChunker_Split_Reconstruction(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		minChunk int
		maxChunk int
	}{
		{
			name:     "empty input",
			text:     "",
			minChunk: 100,
			maxChunk: 500,
		},
		{
			name:     "single short paragraph",
			text:     "The quick brown fox jumps over the lazy dog.",
			minChunk: 100,
			maxChunk: 500,
		},
		{
			name:     "multiple paragraphs",
			text:     strings.Repeat("Paragraph text that is reasonably long.\n\n", 20),
			minChunk: 100,
			maxChunk: 500,
		},
		{
			name:     "horizontal rule separators",
			text:     "First section.\n\n---\n\nSecond section with more content to pad it out a bit.",
			minChunk: 20,
			maxChunk: 60,
		},
		{
			name:     "oversized single paragraph forces secondary split",
			text:     strings.Repeat("A reasonably long sentence without breaks. ", 50),
			minChunk: 100,
			maxChunk: 300,
		},
		{
			name:     "markdown headings",
			text:     "# Title\n\nIntro paragraph.\n\n## Section\n\nMore content here that is long enough to matter.\n",
			minChunk: 20,
			maxChunk: 60,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(tt.minChunk, tt.maxChunk, nil)
			chunks, err := c.Split(tt.text)
			if err != nil {
				t.Fatalf("Split() error = %v", err)
			}

			joined := strings.Join(chunks, "")
			if joined != tt.text {
				t.Fatalf("reconstruction mismatch: got %d bytes, want %d bytes", len(joined), len(tt.text))
			}
		})
	}
}

func TestChunker_Split_EmptyReturnsNoChunks(t *testing.T) {
	c := New(100, 500, nil)
	chunks, err := c.Split("")
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) != 0 {
		t.Fatalf("expected no chunks for empty input, got %d", len(chunks))
	}
}

func TestChunker_Split_InvalidBounds(t *testing.T) {
	c := New(500, 100, nil)
	if _, err := c.Split("some text"); err == nil {
		t.Fatal("expected error for min > max bounds")
	}
}

func TestChunker_Split_LongInputYieldsMultipleChunks(t *testing.T) {
	text := strings.Repeat("word ", 200) + "\n\n" + strings.Repeat("more ", 200)
	c := New(50, 200, nil)
	chunks, err := c.Split(text)
	if err != nil {
		t.Fatalf("Split() error = %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected the long input to be split into multiple chunks, got %d", len(chunks))
	}
}
