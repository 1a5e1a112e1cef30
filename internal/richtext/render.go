package richtext

import (
	"strconv"
	"strings"

	"golang.org/x/net/html"
)

// Render serializes the document to HTML markup. Text and attribute values
// are escaped.
func Render(doc *Document) string {
	var sb strings.Builder
	for _, b := range doc.Blocks {
		renderBlock(&sb, b)
	}
	return sb.String()
}

func renderBlock(sb *strings.Builder, b Block) {
	switch b.Kind {
	case KindParagraph:
		sb.WriteString("<p>")
		renderInlines(sb, b.Inlines)
		sb.WriteString("</p>")
	case KindHeading:
		tag := "h" + strconv.Itoa(b.Level)
		sb.WriteString("<" + tag + ">")
		renderInlines(sb, b.Inlines)
		sb.WriteString("</" + tag + ">")
	case KindList:
		tag := "ul"
		if b.Ordered {
			tag = "ol"
		}
		sb.WriteString("<" + tag + ">")
		for _, item := range b.Items {
			sb.WriteString("<li>")
			renderInlines(sb, item)
			sb.WriteString("</li>")
		}
		sb.WriteString("</" + tag + ">")
	case KindImage:
		sb.WriteString(`<img src="`)
		sb.WriteString(html.EscapeString(b.Src))
		sb.WriteString(`" alt="`)
		sb.WriteString(html.EscapeString(b.Alt))
		sb.WriteString(`">`)
	}
}

func renderInlines(sb *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch in.Kind {
		case KindText:
			if in.Bold {
				sb.WriteString("<strong>")
			}
			if in.Italic {
				sb.WriteString("<em>")
			}
			sb.WriteString(html.EscapeString(in.Text))
			if in.Italic {
				sb.WriteString("</em>")
			}
			if in.Bold {
				sb.WriteString("</strong>")
			}
		case KindLink:
			sb.WriteString(`<a href="`)
			sb.WriteString(html.EscapeString(in.Href))
			sb.WriteString(`">`)
			renderInlines(sb, in.Children)
			sb.WriteString("</a>")
		case KindBreak:
			sb.WriteString("<br>")
		}
	}
}

// PlainText returns the document's text without markup. Blocks are separated
// by a single space.
func PlainText(doc *Document) string {
	parts := make([]string, 0, len(doc.Blocks))
	for _, b := range doc.Blocks {
		var sb strings.Builder
		switch b.Kind {
		case KindParagraph, KindHeading:
			plainInlines(&sb, b.Inlines)
		case KindList:
			for i, item := range b.Items {
				if i > 0 {
					sb.WriteString(" ")
				}
				plainInlines(&sb, item)
			}
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, " ")
}

func plainInlines(sb *strings.Builder, inlines []Inline) {
	for _, in := range inlines {
		switch in.Kind {
		case KindText:
			sb.WriteString(in.Text)
		case KindLink:
			plainInlines(sb, in.Children)
		case KindBreak:
			sb.WriteString(" ")
		}
	}
}
