package richtext

import (
	"net/url"
	"strings"
)

// Editing operations append at the end of the document, where the editor's
// cursor sits while composing a post.

// InsertParagraph starts a new paragraph holding inlines.
func (d *Document) InsertParagraph(inlines ...Inline) {
	d.Blocks = append(d.Blocks, Block{Kind: KindParagraph, Inlines: inlines})
}

// InsertHeading appends a heading of the given level.
func (d *Document) InsertHeading(level int, text string) error {
	if level < 1 || level > 6 {
		return ErrInvalidHeadingLevel
	}
	d.Blocks = append(d.Blocks, Block{Kind: KindHeading, Level: level, Inlines: []Inline{Text(text)}})
	return nil
}

// InsertText appends plain text to the current paragraph.
func (d *Document) InsertText(text string) {
	d.appendInline(Text(text))
}

// InsertBoldRun appends bold text to the current paragraph.
func (d *Document) InsertBoldRun(text string) {
	d.appendInline(Bold(text))
}

// InsertItalicRun appends italic text to the current paragraph.
func (d *Document) InsertItalicRun(text string) {
	d.appendInline(Italic(text))
}

// InsertLink appends a link to the current paragraph. text defaults to href.
func (d *Document) InsertLink(href, text string) error {
	if !safeLinkURL(href) {
		return ErrUnsafeURL
	}
	if text == "" {
		text = href
	}
	d.appendInline(Link(href, Text(text)))
	return nil
}

// InsertList appends a bulleted or numbered list with one plain-text item
// per entry.
func (d *Document) InsertList(ordered bool, items ...string) {
	block := Block{Kind: KindList, Ordered: ordered, Items: make([][]Inline, 0, len(items))}
	for _, item := range items {
		block.Items = append(block.Items, []Inline{Text(item)})
	}
	d.Blocks = append(d.Blocks, block)
}

// InsertImage appends an image block. src may be an http(s) URL or a raster
// image data URL.
func (d *Document) InsertImage(src, alt string) error {
	if !IsSafeImageURL(src) {
		return ErrUnsafeURL
	}
	d.Blocks = append(d.Blocks, Block{Kind: KindImage, Src: src, Alt: alt})
	return nil
}

// appendInline adds to the trailing paragraph, opening one when the document
// ends with any other block.
func (d *Document) appendInline(in Inline) {
	if n := len(d.Blocks); n > 0 && d.Blocks[n-1].Kind == KindParagraph {
		d.Blocks[n-1].Inlines = append(d.Blocks[n-1].Inlines, in)
		return
	}
	d.InsertParagraph(in)
}

// Validate checks a document received from a client before it is rendered.
func (d *Document) Validate() error {
	if len(d.Blocks) == 0 {
		return ErrEmptyDocument
	}
	for _, b := range d.Blocks {
		switch b.Kind {
		case KindParagraph:
			if err := validateInlines(b.Inlines); err != nil {
				return err
			}
		case KindHeading:
			if b.Level < 1 || b.Level > 6 {
				return ErrInvalidHeadingLevel
			}
			if err := validateInlines(b.Inlines); err != nil {
				return err
			}
		case KindList:
			for _, item := range b.Items {
				if err := validateInlines(item); err != nil {
					return err
				}
			}
		case KindImage:
			if !IsSafeImageURL(b.Src) {
				return ErrUnsafeURL
			}
		default:
			return ErrUnknownNode
		}
	}
	return nil
}

func validateInlines(inlines []Inline) error {
	for _, in := range inlines {
		switch in.Kind {
		case KindText, KindBreak:
		case KindLink:
			if !safeLinkURL(in.Href) {
				return ErrUnsafeURL
			}
			if err := validateInlines(in.Children); err != nil {
				return err
			}
		default:
			return ErrUnknownNode
		}
	}
	return nil
}

func safeLinkURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || raw == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https", "mailto":
		return true
	}
	return false
}

var dataImagePrefixes = []string{
	"data:image/png;",
	"data:image/jpeg;",
	"data:image/gif;",
	"data:image/webp;",
}

// IsSafeImageURL accepts relative and http(s) URLs and raster image data URLs.
func IsSafeImageURL(raw string) bool {
	if strings.HasPrefix(raw, "data:") {
		for _, prefix := range dataImagePrefixes {
			if strings.HasPrefix(raw, prefix) {
				return true
			}
		}
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || raw == "" {
		return false
	}
	switch strings.ToLower(u.Scheme) {
	case "", "http", "https":
		return true
	}
	return false
}
