package extend

import (
	"bytes"
	"context"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
)

// DefaultWordsPerMinute is the reading speed used by the reading hook.
const DefaultWordsPerMinute = 200

// Reading contributes reading statistics and a heading outline:
//
//	readingTime: {minutes: 3, words: 512}
//	headings:    [{depth: 2, text: 'Install', id: 'install'}, ...]
//
// Code blocks are excluded from the word count.
type Reading struct {
	wordsPerMinute int
	md             goldmark.Markdown
}

// NewReading returns a Reading hook. Non-positive speeds fall back to
// DefaultWordsPerMinute.
func NewReading(wordsPerMinute int) *Reading {
	if wordsPerMinute <= 0 {
		wordsPerMinute = DefaultWordsPerMinute
	}
	return &Reading{
		wordsPerMinute: wordsPerMinute,
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithParserOptions(parser.WithAutoHeadingID()),
		),
	}
}

func (r *Reading) Extend(ctx context.Context, in Input) (map[string]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	src := []byte(in.Content)
	doc := r.md.Parser().Parse(text.NewReader(src))

	words := 0
	headings := []any{}
	err := ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Heading:
			heading := map[string]any{
				"depth": node.Level,
				"text":  plainText(node, src),
			}
			if id, ok := node.AttributeString("id"); ok {
				if b, isBytes := id.([]byte); isBytes {
					heading["id"] = string(b)
				}
			}
			headings = append(headings, heading)
		case *ast.Text:
			words += len(strings.Fields(string(node.Segment.Value(src))))
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	minutes := 0
	if words > 0 {
		minutes = (words + r.wordsPerMinute - 1) / r.wordsPerMinute
	}
	return map[string]any{
		"readingTime": map[string]any{
			"minutes": minutes,
			"words":   words,
		},
		"headings": headings,
	}, nil
}

// plainText concatenates the text segments below n.
func plainText(n ast.Node, src []byte) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			buf.Write(t.Segment.Value(src))
			if t.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return strings.TrimSpace(buf.String())
}
