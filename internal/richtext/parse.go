package richtext

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const maxDepth = 64

// policy keeps only the elements the document model can represent.
// Everything else is unwrapped; script and style are dropped with their
// content.
var policy = newPolicy()

func newPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "h1", "h2", "h3", "h4", "h5", "h6",
		"ul", "ol", "li", "strong", "b", "em", "i", "br")
	p.AllowStandardURLs()
	p.AllowAttrs("href").OnElements("a")
	p.AllowAttrs("src", "alt").OnElements("img")
	p.AllowDataURIImages()
	return p
}

// Sanitize strips markup the document model cannot represent.
func Sanitize(markup string) string {
	return policy.Sanitize(markup)
}

// Parse reads markup into a document. Unsupported elements are unwrapped and
// their text kept. Images nested in a paragraph split it in two.
func Parse(markup string) (*Document, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(Sanitize(markup)), body)
	if err != nil {
		return nil, fmt.Errorf("parse markup: %w", err)
	}

	b := &builder{kind: KindParagraph}
	for _, n := range nodes {
		b.block(n, 0)
	}
	b.flush()

	return &Document{Blocks: b.blocks}, nil
}

// Normalize parses and re-renders markup.
func Normalize(markup string) (string, error) {
	doc, err := Parse(markup)
	if err != nil {
		return "", err
	}
	return Render(doc), nil
}

// Excerpt returns up to maxLen characters of the markup's plain text,
// followed by "..." when truncated.
func Excerpt(markup string, maxLen int) string {
	doc, err := Parse(markup)
	if err != nil {
		return ""
	}
	text := PlainText(doc)
	if utf8.RuneCountInString(text) <= maxLen {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxLen]) + "..."
}

type marks struct {
	bold, italic bool
}

// builder collects blocks. Inline content accumulates into a pending block
// of the current kind until a block boundary flushes it.
type builder struct {
	blocks  []Block
	kind    BlockKind
	level   int
	pending []Inline
	lifted  *[]Block // when set, images are collected here instead
}

func (b *builder) flush() {
	inlines := mergeText(b.pending)
	b.pending = nil
	if isBlank(inlines) {
		return
	}
	b.blocks = append(b.blocks, Block{Kind: b.kind, Level: b.level, Inlines: inlines})
}

func (b *builder) open(kind BlockKind, level int) {
	b.flush()
	b.kind, b.level = kind, level
}

func (b *builder) block(n *html.Node, depth int) {
	if depth > maxDepth {
		return
	}
	if n.Type != html.ElementNode {
		b.inline(n, marks{}, &b.pending, depth)
		return
	}

	switch n.DataAtom {
	case atom.P:
		b.open(KindParagraph, 0)
		b.children(n, marks{}, depth)
		b.open(KindParagraph, 0)
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		b.open(KindHeading, int(n.Data[1]-'0'))
		b.children(n, marks{}, depth)
		b.open(KindParagraph, 0)
	case atom.Ul, atom.Ol:
		b.open(KindParagraph, 0)
		b.list(n, depth)
	case atom.Img:
		b.image(n)
	default:
		b.inline(n, marks{}, &b.pending, depth)
	}
}

func (b *builder) children(n *html.Node, m marks, depth int) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.inline(c, m, &b.pending, depth+1)
	}
}

func (b *builder) image(n *html.Node) {
	src := attr(n, "src")
	if !IsSafeImageURL(src) {
		return
	}
	kind, level := b.kind, b.level
	b.flush()
	b.blocks = append(b.blocks, Block{Kind: KindImage, Src: src, Alt: attr(n, "alt")})
	b.kind, b.level = kind, level
}

// list reads li children. Nested lists are flattened into the enclosing item;
// images inside items are placed after the list.
func (b *builder) list(n *html.Node, depth int) {
	block := Block{Kind: KindList, Ordered: n.DataAtom == atom.Ol}
	var images []Block

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode || c.DataAtom != atom.Li {
			continue
		}
		item := &builder{kind: KindParagraph, lifted: &images}
		for gc := c.FirstChild; gc != nil; gc = gc.NextSibling {
			item.inline(gc, marks{}, &item.pending, depth+1)
		}
		inlines := mergeText(item.pending)
		if !isBlank(inlines) {
			block.Items = append(block.Items, inlines)
		}
	}

	if len(block.Items) > 0 {
		b.blocks = append(b.blocks, block)
	}
	b.blocks = append(b.blocks, images...)
}

// inline appends n's inline content to out. Images met along the way are
// emitted as blocks through b.
func (b *builder) inline(n *html.Node, m marks, out *[]Inline, depth int) {
	if depth > maxDepth {
		return
	}

	switch n.Type {
	case html.TextNode:
		if n.Data != "" {
			*out = append(*out, Inline{Kind: KindText, Text: n.Data, Bold: m.bold, Italic: m.italic})
		}
		return
	case html.ElementNode:
	default:
		return
	}

	switch n.DataAtom {
	case atom.Strong, atom.B:
		m.bold = true
	case atom.Em, atom.I:
		m.italic = true
	case atom.Br:
		*out = append(*out, Break())
		return
	case atom.Img:
		src := attr(n, "src")
		switch {
		case !IsSafeImageURL(src):
		case b.lifted != nil:
			*b.lifted = append(*b.lifted, Block{Kind: KindImage, Src: src, Alt: attr(n, "alt")})
		case out == &b.pending:
			b.image(n)
		default:
			b.blocks = append(b.blocks, Block{Kind: KindImage, Src: src, Alt: attr(n, "alt")})
		}
		return
	case atom.A:
		href := attr(n, "href")
		if safeLinkURL(href) {
			var children []Inline
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				b.inline(c, m, &children, depth+1)
			}
			if children = mergeText(children); len(children) > 0 {
				*out = append(*out, Link(href, children...))
			}
			return
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.inline(c, m, out, depth+1)
	}
}

// mergeText joins adjacent text runs that carry the same marks.
func mergeText(inlines []Inline) []Inline {
	var out []Inline
	for _, in := range inlines {
		if n := len(out); n > 0 && in.Kind == KindText && out[n-1].Kind == KindText &&
			out[n-1].Bold == in.Bold && out[n-1].Italic == in.Italic {
			out[n-1].Text += in.Text
			continue
		}
		out = append(out, in)
	}
	return out
}

// isBlank reports whether inlines hold nothing but whitespace and breaks.
func isBlank(inlines []Inline) bool {
	for _, in := range inlines {
		switch in.Kind {
		case KindBreak:
		case KindText:
			if strings.TrimSpace(in.Text) != "" {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}
