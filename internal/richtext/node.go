// Package richtext is the document model behind post content. A Document is a
// flat list of blocks holding inline runs; it is serialized to HTML markup for
// storage and parsed back from markup for editing.
package richtext

import "errors"

type BlockKind string

const (
	KindParagraph BlockKind = "paragraph"
	KindHeading   BlockKind = "heading"
	KindList      BlockKind = "list"
	KindImage     BlockKind = "image"
)

type InlineKind string

const (
	KindText  InlineKind = "text"
	KindLink  InlineKind = "link"
	KindBreak InlineKind = "break"
)

// Document is an ordered sequence of blocks.
type Document struct {
	Blocks []Block `json:"blocks"`
}

// Block is one top-level element. Which fields are used depends on Kind:
// paragraphs and headings carry Inlines, lists carry Items, images carry
// Src and Alt.
type Block struct {
	Kind    BlockKind  `json:"type"`
	Level   int        `json:"level,omitempty"`
	Ordered bool       `json:"ordered,omitempty"`
	Inlines []Inline   `json:"children,omitempty"`
	Items   [][]Inline `json:"items,omitempty"`
	Src     string     `json:"src,omitempty"`
	Alt     string     `json:"alt,omitempty"`
}

// Inline is a run of text with marks, a link wrapping other inlines, or a
// line break.
type Inline struct {
	Kind     InlineKind `json:"type"`
	Text     string     `json:"text,omitempty"`
	Bold     bool       `json:"bold,omitempty"`
	Italic   bool       `json:"italic,omitempty"`
	Href     string     `json:"href,omitempty"`
	Children []Inline   `json:"children,omitempty"`
}

var (
	ErrInvalidHeadingLevel = errors.New("richtext: heading level must be between 1 and 6")
	ErrUnsafeURL           = errors.New("richtext: unsupported or unsafe URL")
	ErrUnknownNode         = errors.New("richtext: unknown node type")
	ErrEmptyDocument       = errors.New("richtext: document is empty")
)

// Text returns a plain text run.
func Text(s string) Inline {
	return Inline{Kind: KindText, Text: s}
}

// Bold returns a bold text run.
func Bold(s string) Inline {
	return Inline{Kind: KindText, Text: s, Bold: true}
}

// Italic returns an italic text run.
func Italic(s string) Inline {
	return Inline{Kind: KindText, Text: s, Italic: true}
}

// Link wraps children in a hyperlink.
func Link(href string, children ...Inline) Inline {
	return Inline{Kind: KindLink, Href: href, Children: children}
}

// Break is a hard line break inside a block.
func Break() Inline {
	return Inline{Kind: KindBreak}
}
