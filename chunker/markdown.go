package chunker

import (
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

var markdownParser = goldmark.New()

// markdownBreaks returns, for each top-level block node in source that
// carries lines of its own (paragraph, heading, code block, HTML block), the
// byte offset where its last line ends. Container blocks (lists,
// blockquotes) and thematic breaks have no lines of their own and yield no
// offset. These are candidate primary-separator positions beyond
// the plain paragraph/horizontal-rule regex, used to prefer breaking at
// markdown structure when the input looks like markdown. A parse failure or
// an input with no block structure yields an empty slice; callers fall back
// to the plain regex pass, so this is purely an enrichment, never a
// correctness dependency.
func markdownBreaks(source []byte) []int {
	defer func() { recover() }() // goldmark panics on some malformed inputs; treat as "no breaks"

	reader := text.NewReader(source)
	doc := markdownParser.Parser().Parse(reader)

	var offsets []int
	_ = ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering || node.Parent() != doc {
			return ast.WalkContinue, nil
		}
		blockNode, ok := node.(interface{ Lines() *text.Segments })
		if !ok {
			return ast.WalkContinue, nil
		}
		lines := blockNode.Lines()
		if lines != nil && lines.Len() > 0 {
			last := lines.At(lines.Len() - 1)
			offsets = append(offsets, last.Stop)
		}
		return ast.WalkSkipChildren, nil
	})

	return offsets
}
