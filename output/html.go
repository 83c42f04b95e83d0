package output

import (
	"errors"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// HTMLSink collects pages into an HTML document with one pre element per
// page and renders it on End. Title and metadata come from Begin.
type HTMLSink struct {
	w       io.Writer
	charset string
	doc     *html.Node
	body    *html.Node
}

// NewHTMLSink returns a sink rendering to w. charset is declared in a meta
// element when non-empty; it should name the encoding w applies.
func NewHTMLSink(w io.Writer, charset string) *HTMLSink {
	return &HTMLSink{w: w, charset: charset}
}

func element(a atom.Atom, attrs ...html.Attribute) *html.Node {
	return &html.Node{Type: html.ElementNode, DataAtom: a, Data: a.String(), Attr: attrs}
}

func textNode(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Begin builds the document head.
func (s *HTMLSink) Begin(meta Metadata) error {
	s.doc = &html.Node{Type: html.DocumentNode}
	s.doc.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root := element(atom.Html)
	head := element(atom.Head)
	s.body = element(atom.Body)
	s.doc.AppendChild(root)
	root.AppendChild(head)
	root.AppendChild(s.body)

	if s.charset != "" {
		head.AppendChild(element(atom.Meta, html.Attribute{Key: "charset", Val: s.charset}))
	}
	if meta.Title != "" {
		title := element(atom.Title)
		title.AppendChild(textNode(meta.Title))
		head.AppendChild(title)
	}
	for _, m := range []struct{ name, value string }{
		{"Author", meta.Author},
		{"Subject", meta.Subject},
		{"Keywords", meta.Keywords},
		{"Creator", meta.Creator},
		{"Producer", meta.Producer},
	} {
		if m.value == "" {
			continue
		}
		head.AppendChild(element(atom.Meta,
			html.Attribute{Key: "name", Val: m.name},
			html.Attribute{Key: "content", Val: m.value}))
	}
	return nil
}

// WritePage appends a pre element holding text.
func (s *HTMLSink) WritePage(number int, text string) error {
	if s.body == nil {
		return errors.New("html: WritePage before Begin")
	}
	pre := element(atom.Pre)
	if text != "" {
		pre.AppendChild(textNode(text))
	}
	s.body.AppendChild(pre)
	return nil
}

// End renders the document.
func (s *HTMLSink) End() error {
	if s.doc == nil {
		return errors.New("html: End before Begin")
	}
	if err := html.Render(s.w, s.doc); err != nil {
		return err
	}
	_, err := io.WriteString(s.w, "\n")
	return err
}
