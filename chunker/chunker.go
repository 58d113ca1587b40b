// Package chunker partitions input text into size-bounded segments at
// semantic break points (§4.1).
package chunker

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	llmpress "github.com/brodiemilliken/LLMPress"
	"github.com/dlclark/regexp2"
)

// primary separators: paragraph breaks and horizontal-rule lines of -, *, or
// _ at least 3 long, surrounded by newlines. No lookaround needed, so the
// stdlib RE2 engine handles this pattern directly.
var primaryPattern = regexp.MustCompile(`\n\n|\n[-*_]{3,}\n`)

// secondary breakpoints used to re-split an oversized chunk: a line break,
// or a sentence terminator followed by whitespace. The sentence case needs a
// lookbehind, which Go's RE2-based regexp cannot express.
var secondaryPattern = regexp2.MustCompile(`\n|(?<=[.!?])\s+`, regexp2.None)

// Chunker splits text into chunks, aiming for [MinSize, MaxSize] bytes and
// preferring semantic delimiters, guaranteeing that the concatenation of its
// output reproduces the input exactly. The bounds are not enforced: a span
// with no primary separator or secondary breakpoint is never cut, so a chunk
// can exceed MaxSize, and a short trailing chunk merges into its predecessor
// up to 1.5*MaxSize.
type Chunker struct {
	MinSize int
	MaxSize int

	logger *slog.Logger
}

// New builds a Chunker with the given byte bounds.
func New(minSize, maxSize int, logger *slog.Logger) Chunker {
	if logger == nil {
		logger = slog.Default()
	}
	return Chunker{
		MinSize: minSize,
		MaxSize: maxSize,
		logger:  logger.With(slog.String("module", "chunker")),
	}
}

// Split partitions text into chunks per the two-pass greedy algorithm of
// §4.1. The concatenation of the returned chunks always equals text; when
// the delimiter-aware passes fail to guarantee that (a regex edge case
// dropped bytes), Split falls back to fixed-size slicing at MaxSize bytes.
func (c Chunker) Split(text string) ([]string, error) {
	if text == "" {
		return []string{}, nil
	}
	if c.MinSize <= 0 || c.MaxSize <= 0 || c.MinSize > c.MaxSize {
		return nil, fmt.Errorf("chunker: invalid bounds [%d, %d]: %w", c.MinSize, c.MaxSize, llmpress.ErrChunking)
	}

	chunks := splitPrimary(text, c.MinSize, c.MaxSize)
	chunks, err := resplitOversized(chunks, c.MinSize, c.MaxSize)
	if err != nil {
		return nil, fmt.Errorf("chunker: resplit oversized chunk: %w", err)
	}

	if strings.Join(chunks, "") != text {
		c.logger.Warn("chunk reconstruction mismatch, falling back to fixed-size slicing",
			slog.Int("original_bytes", len(text)))
		chunks = fixedSizeFallback(text, c.MaxSize)
	}

	return chunks, nil
}

// breakSpan is a candidate primary-separator span: [start, end) of the
// delimiter text. A zero-width span (start == end) marks a markdown block
// boundary that carries no delimiter characters of its own.
type breakSpan struct{ start, end int }

// mergedBreaks combines the plain paragraph/horizontal-rule regex matches
// with markdown block boundaries (the end of each top-level paragraph,
// heading or code block) discovered by goldmark, so chunking prefers markdown
// structure when the input has it without requiring it. Regex spans win
// over an overlapping zero-width markdown boundary.
func mergedBreaks(src string) []breakSpan {
	var spans []breakSpan
	for _, m := range primaryPattern.FindAllStringIndex(src, -1) {
		spans = append(spans, breakSpan{m[0], m[1]})
	}
	for _, off := range markdownBreaks([]byte(src)) {
		if off > 0 && off < len(src) {
			spans = append(spans, breakSpan{off, off})
		}
	}

	sort.Slice(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end > spans[j].end
	})

	var out []breakSpan
	lastEnd := -1
	for _, s := range spans {
		if s.start < lastEnd {
			continue
		}
		if len(out) > 0 && out[len(out)-1].start == s.start {
			continue
		}
		out = append(out, s)
		lastEnd = s.end
	}
	return out
}

// splitPrimary runs the first pass: split at primary separators, emitting a
// chunk once the accumulator reaches MinSize at a separator, or once adding
// the next segment would exceed MaxSize with the accumulator already past
// MinSize. A short trailing remainder merges into the previous chunk when
// the merge does not exceed 1.5*MaxSize.
func splitPrimary(text string, minSize, maxSize int) []string {
	spans := mergedBreaks(text)

	var chunks []string
	var current strings.Builder
	pos := 0

	for _, sp := range spans {
		segment := text[pos:sp.start]
		delim := text[sp.start:sp.end]
		proposed := segment + delim

		if current.Len()+len(proposed) > maxSize && current.Len() >= minSize {
			chunks = append(chunks, current.String())
			current.Reset()
			current.WriteString(proposed)
		} else {
			current.WriteString(proposed)
			if current.Len() >= minSize && delim != "" {
				chunks = append(chunks, current.String())
				current.Reset()
			}
		}
		pos = sp.end
	}

	current.WriteString(text[pos:])

	if current.Len() > 0 {
		if current.Len() < minSize && len(chunks) > 0 {
			last := chunks[len(chunks)-1]
			merged := last + current.String()
			if float64(len(merged)) <= 1.5*float64(maxSize) {
				chunks[len(chunks)-1] = merged
			} else {
				chunks = append(chunks, current.String())
			}
		} else {
			chunks = append(chunks, current.String())
		}
	}

	return chunks
}

// resplitOversized re-splits any chunk larger than 1.5*MaxSize at secondary
// breakpoints.
func resplitOversized(chunks []string, minSize, maxSize int) ([]string, error) {
	threshold := 1.5 * float64(maxSize)

	result := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if float64(len(chunk)) <= threshold {
			result = append(result, chunk)
			continue
		}
		sub, err := splitSecondary(chunk, minSize, maxSize)
		if err != nil {
			return nil, err
		}
		result = append(result, sub...)
	}
	return result, nil
}

// splitSecondary applies the same accumulate-and-emit rule as splitPrimary
// but against the secondary breakpoint pattern, emitting on MaxSize rather
// than waiting for a delimiter.
func splitSecondary(text string, minSize, maxSize int) ([]string, error) {
	var pieces []string
	pos := 0

	m, err := secondaryPattern.FindStringMatch(text)
	if err != nil {
		return nil, fmt.Errorf("secondary breakpoint match: %w", err)
	}
	for m != nil {
		start := m.Index
		end := start + m.Length
		pieces = append(pieces, text[pos:start], text[start:end])
		pos = end

		m, err = secondaryPattern.FindNextMatch(m)
		if err != nil {
			return nil, fmt.Errorf("secondary breakpoint match: %w", err)
		}
	}
	pieces = append(pieces, text[pos:], "")

	var sub []string
	var current strings.Builder
	for i := 0; i < len(pieces); i += 2 {
		textPart := pieces[i]
		breakPart := ""
		if i+1 < len(pieces) {
			breakPart = pieces[i+1]
		}

		if current.Len()+len(textPart)+len(breakPart) > maxSize && current.Len() >= minSize {
			sub = append(sub, current.String())
			current.Reset()
		}
		current.WriteString(textPart)
		current.WriteString(breakPart)
	}
	if current.Len() > 0 {
		sub = append(sub, current.String())
	}

	return sub, nil
}

// fixedSizeFallback slices text into exactly MaxSize-byte chunks, the last
// resort when delimiter-aware splitting fails its own integrity check.
func fixedSizeFallback(text string, maxSize int) []string {
	var chunks []string
	for i := 0; i < len(text); i += maxSize {
		end := i + maxSize
		if end > len(text) {
			end = len(text)
		}
		chunks = append(chunks, text[i:end])
	}
	return chunks
}
