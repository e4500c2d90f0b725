package dom

import (
	"net/url"
	"strings"
)

// NodeType distinguishes elements from text.
type NodeType uint8

const (
	ElementNode NodeType = iota
	TextNode
)

// Node is one element or text node of a parsed page. A node owns its
// children; Parent is a back-reference used for upward walks only.
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    map[string]string
	Text     string
	Children []*Node
	Parent   *Node
}

// Document is the parsed tree of one page plus the metadata it was parsed
// with. It belongs to a single extraction call.
type Document struct {
	Root     *Node
	Encoding string
	BaseURL  *url.URL
}

// NewElement returns a detached element. Tag is lower-cased.
func NewElement(tag string, attrs map[string]string) *Node {
	if attrs == nil {
		attrs = map[string]string{}
	}
	return &Node{Type: ElementNode, Tag: strings.ToLower(tag), Attrs: attrs}
}

// NewText returns a detached text node.
func NewText(s string) *Node {
	return &Node{Type: TextNode, Text: s}
}

// AppendChild attaches c as the last child of n. It panics if c already has
// a parent, if n is a text node, or if c is n or one of its ancestors.
func (n *Node) AppendChild(c *Node) {
	if c.Parent != nil {
		panic("dom: AppendChild called for an attached child Node")
	}
	if n.Type == TextNode {
		panic("dom: AppendChild called on a text Node")
	}
	for p := n; p != nil; p = p.Parent {
		if p == c {
			panic("dom: AppendChild would create a cycle")
		}
	}
	c.Parent = n
	n.Children = append(n.Children, c)
}

// Attr returns the attribute value for key, or "".
func (n *Node) Attr(key string) string {
	if n == nil || n.Attrs == nil {
		return ""
	}
	return n.Attrs[strings.ToLower(key)]
}

// Is reports whether n is an element with one of the given tags.
func (n *Node) Is(tags ...string) bool {
	if n == nil || n.Type != ElementNode {
		return false
	}
	for _, t := range tags {
		if n.Tag == t {
			return true
		}
	}
	return false
}

// Walk visits n and its descendants in document order. Returning false from
// fn skips the children of the visited node.
func (n *Node) Walk(fn func(*Node) bool) {
	if n == nil {
		return
	}
	if !fn(n) {
		return
	}
	for _, c := range n.Children {
		c.Walk(fn)
	}
}

// Find returns the first descendant element (or n itself) with the tag.
func (n *Node) Find(tag string) *Node {
	var res *Node
	n.Walk(func(cur *Node) bool {
		if res != nil {
			return false
		}
		if cur.Is(tag) {
			res = cur
			return false
		}
		return true
	})
	return res
}

// FindAll returns all descendant elements with any of the tags, in
// document order.
func (n *Node) FindAll(tags ...string) []*Node {
	var out []*Node
	n.Walk(func(cur *Node) bool {
		if cur.Is(tags...) {
			out = append(out, cur)
		}
		return true
	})
	return out
}

// Contains reports whether d is n or a descendant of n.
func (n *Node) Contains(d *Node) bool {
	for p := d; p != nil; p = p.Parent {
		if p == n {
			return true
		}
	}
	return false
}

// Body returns the <body> element, or nil.
func (d *Document) Body() *Node {
	if d == nil || d.Root == nil {
		return nil
	}
	return d.Root.Find("body")
}

// Title returns the whitespace-collapsed text of the <title> element in
// <head>.
func (d *Document) Title() string {
	if d == nil || d.Root == nil {
		return ""
	}
	head := d.Root.Find("head")
	if head == nil {
		return ""
	}
	t := head.Find("title")
	if t == nil {
		return ""
	}
	return CollapseSpace(t.InnerText())
}
