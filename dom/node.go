package dom

import (
	"errors"
	"slices"
)

var (
	ErrNotChild  = errors.New("dom: anchor is not a child of the target")
	ErrHierarchy = errors.New("dom: node cannot be inserted into its own subtree")
)

type Kind uint8

const (
	KindElement Kind = iota
	KindText
	KindComment
)

// Node is anything that can live in an element's child list.
type Node interface {
	Kind() Kind
	Parent() *Element
	base() *nodeBase
}

type nodeBase struct {
	parent *Element
}

func (n *nodeBase) Parent() *Element { return n.parent }
func (n *nodeBase) base() *nodeBase  { return n }

type Attr struct {
	Name  string
	Value string
}

type Element struct {
	nodeBase
	tag       string
	attrs     []Attr
	children  []Node
	listeners map[string][]*listener
	writes    int
}

func NewElement(tag string) *Element {
	return &Element{tag: tag}
}

func (e *Element) Kind() Kind  { return KindElement }
func (e *Element) Tag() string { return e.tag }

// Writes counts attribute and child-list mutations made after construction.
func (e *Element) Writes() int { return e.writes }

func (e *Element) Children() []Node {
	return slices.Clone(e.children)
}

func (e *Element) FirstChild() Node {
	if len(e.children) == 0 {
		return nil
	}
	return e.children[0]
}

func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func (e *Element) Attrs() []Attr {
	return slices.Clone(e.attrs)
}

// SetAttr writes the attribute only when its value actually changes.
func (e *Element) SetAttr(name, value string) {
	for i, a := range e.attrs {
		if a.Name == name {
			if a.Value == value {
				return
			}
			e.attrs[i].Value = value
			e.writes++
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
	e.writes++
}

func (e *Element) RemoveAttr(name string) {
	for i, a := range e.attrs {
		if a.Name == name {
			e.attrs = slices.Delete(e.attrs, i, i+1)
			e.writes++
			return
		}
	}
}

// SetTextContent replaces every child with a single text node.
func (e *Element) SetTextContent(data string) {
	for _, c := range e.children {
		c.base().parent = nil
	}
	e.children = e.children[:0]
	if data != "" {
		t := NewText(data)
		t.parent = e
		e.children = append(e.children, t)
	}
	e.writes++
}

func (e *Element) TextContent() string {
	var buf []byte
	Walk(e, func(n Node) bool {
		if t, ok := n.(*Text); ok {
			buf = append(buf, t.data...)
		}
		return true
	})
	return string(buf)
}

func (e *Element) indexOf(n Node) int {
	for i, c := range e.children {
		if c == n {
			return i
		}
	}
	return -1
}

func (e *Element) contains(n Node) bool {
	for p := e; p != nil; p = p.parent {
		if Node(p) == n {
			return true
		}
	}
	return false
}

type Text struct {
	nodeBase
	data   string
	writes int
}

func NewText(data string) *Text {
	return &Text{data: data}
}

// Space is the separator text node emitted between sibling elements.
func Space() *Text { return NewText(" ") }

// Empty returns a text node with no data, used as an insertion anchor.
func Empty() *Text { return NewText("") }

func (t *Text) Kind() Kind   { return KindText }
func (t *Text) Data() string { return t.data }
func (t *Text) Writes() int  { return t.writes }

// SetData writes the text only when it differs from the current value.
func (t *Text) SetData(data string) {
	if t.data == data {
		return
	}
	t.data = data
	t.writes++
}

type Comment struct {
	nodeBase
	data string
}

func NewComment(data string) *Comment {
	return &Comment{data: data}
}

func (c *Comment) Kind() Kind   { return KindComment }
func (c *Comment) Data() string { return c.data }

// Append moves child to the end of parent's children.
func Append(parent *Element, child Node) {
	if parent.contains(child) {
		panic(ErrHierarchy)
	}
	Detach(child)
	child.base().parent = parent
	parent.children = append(parent.children, child)
	parent.writes++
}

// Insert places child before anchor under parent. A nil anchor appends.
func Insert(parent *Element, child, anchor Node) error {
	if parent.contains(child) {
		return ErrHierarchy
	}
	if anchor == nil {
		Append(parent, child)
		return nil
	}
	if anchor.Parent() != parent {
		return ErrNotChild
	}
	if child == anchor {
		return nil
	}
	Detach(child)
	i := parent.indexOf(anchor)
	child.base().parent = parent
	parent.children = slices.Insert(parent.children, i, child)
	parent.writes++
	return nil
}

// Detach removes n from its parent. Detached nodes are left untouched.
func Detach(n Node) {
	p := n.Parent()
	if p == nil {
		return
	}
	if i := p.indexOf(n); i >= 0 {
		p.children = slices.Delete(p.children, i, i+1)
		p.writes++
	}
	n.base().parent = nil
}

// Walk visits n and its descendants depth first until fn returns false.
func Walk(n Node, fn func(Node) bool) bool {
	if !fn(n) {
		return false
	}
	if e, ok := n.(*Element); ok {
		for _, c := range e.children {
			if !Walk(c, fn) {
				return false
			}
		}
	}
	return true
}
