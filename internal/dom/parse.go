package dom

import (
	"bytes"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
)

// MalformedMarkupError reports input bytes that cannot be decoded into text.
// Markup problems themselves are always repaired, never reported.
type MalformedMarkupError struct {
	Encoding string
	Err      error
}

func (e *MalformedMarkupError) Error() string {
	return fmt.Sprintf("malformed markup (encoding %q): %v", e.Encoding, e.Err)
}

func (e *MalformedMarkupError) Unwrap() error { return e.Err }

// Parse decodes raw and builds a Document. declaredEncoding is a charset
// label such as the one from a Content-Type header; when empty the encoding
// is sniffed from a BOM or <meta charset>, defaulting to UTF-8 for valid
// UTF-8 input. baseURL may be empty; a <base href> in the page overrides it.
func Parse(raw []byte, declaredEncoding string, baseURL string) (*Document, error) {
	enc, name, err := resolveEncoding(raw, declaredEncoding)
	if err != nil {
		return nil, err
	}
	decoded, err := enc.NewDecoder().Bytes(raw)
	if err != nil {
		return nil, &MalformedMarkupError{Encoding: name, Err: err}
	}
	decoded = bytes.TrimPrefix(decoded, []byte("\ufeff"))

	tree, err := html.Parse(bytes.NewReader(decoded))
	if err != nil {
		return nil, &MalformedMarkupError{Encoding: name, Err: err}
	}

	doc := &Document{Encoding: name}
	for c := tree.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode {
			doc.Root = NewElement(c.Data, convertAttrs(c.Attr))
			convert(c, doc.Root)
			break
		}
	}
	if doc.Root == nil {
		// html.Parse always synthesizes <html>; keep the invariant anyway
		doc.Root = NewElement("html", nil)
	}
	doc.BaseURL = resolveBase(baseURL, doc.Root)
	return doc, nil
}

func resolveEncoding(raw []byte, declared string) (encoding.Encoding, string, error) {
	declared = strings.TrimSpace(declared)
	if hasBOM(raw) || declared == "" {
		e, name, _ := charset.DetermineEncoding(raw, "")
		return e, name, nil
	}
	e, name := charset.Lookup(declared)
	if e == nil {
		return nil, declared, &MalformedMarkupError{Encoding: declared, Err: fmt.Errorf("unknown encoding %q", declared)}
	}
	return e, name, nil
}

func hasBOM(raw []byte) bool {
	return bytes.HasPrefix(raw, []byte{0xEF, 0xBB, 0xBF}) ||
		bytes.HasPrefix(raw, []byte{0xFE, 0xFF}) ||
		bytes.HasPrefix(raw, []byte{0xFF, 0xFE})
}

func convert(src *html.Node, dst *Node) {
	for c := src.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.ElementNode:
			el := NewElement(c.Data, convertAttrs(c.Attr))
			dst.AppendChild(el)
			convert(c, el)
		case html.TextNode:
			dst.AppendChild(NewText(c.Data))
		}
	}
}

func convertAttrs(attrs []html.Attribute) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		key := strings.ToLower(a.Key)
		if _, dup := m[key]; dup {
			continue
		}
		m[key] = a.Val
	}
	return m
}

func resolveBase(raw string, root *Node) *url.URL {
	var base *url.URL
	if s := strings.TrimSpace(raw); s != "" {
		if u, err := url.Parse(s); err == nil {
			base = u
		}
	}
	head := root.Find("head")
	if head == nil {
		return base
	}
	el := head.Find("base")
	if el == nil {
		return base
	}
	href := strings.TrimSpace(el.Attr("href"))
	if href == "" {
		return base
	}
	ref, err := url.Parse(href)
	if err != nil {
		return base
	}
	if base == nil {
		if ref.IsAbs() {
			return ref
		}
		return nil
	}
	return base.ResolveReference(ref)
}
