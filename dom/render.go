package dom

import (
	"bytes"
	"fmt"
	"io"
	"strconv"

	"github.com/cespare/xxhash/v2"
	"github.com/valyala/quicktemplate"
)

var voidElements = map[string]bool{
	"area": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "source": true,
}

// errWriter keeps the first write error; quicktemplate writers drop them.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) Write(p []byte) (int, error) {
	if ew.err != nil {
		return 0, ew.err
	}
	n, err := ew.w.Write(p)
	if err != nil {
		ew.err = err
	}
	return n, err
}

// Render writes n and its subtree as HTML and returns the first error the
// writer reported.
func Render(w io.Writer, n Node) error {
	ew := &errWriter{w: w}
	qw := quicktemplate.AcquireWriter(ew)
	writeNode(qw, n)
	quicktemplate.ReleaseWriter(qw)
	if ew.err != nil {
		return fmt.Errorf("render %s: %w", describe(n), ew.err)
	}
	return nil
}

func describe(n Node) string {
	if e, ok := n.(*Element); ok {
		return "<" + e.tag + ">"
	}
	return "node"
}

func HTML(n Node) string {
	var buf bytes.Buffer
	_ = Render(&buf, n)
	return buf.String()
}

func writeNode(qw *quicktemplate.Writer, n Node) {
	switch n := n.(type) {
	case *Text:
		qw.E().S(n.data)
	case *Comment:
		qw.N().S("<!--")
		qw.N().S(n.data)
		qw.N().S("-->")
	case *Element:
		qw.N().S("<")
		qw.N().S(n.tag)
		for _, a := range n.attrs {
			qw.N().S(" ")
			qw.N().S(a.Name)
			qw.N().S(`="`)
			qw.E().S(a.Value)
			qw.N().S(`"`)
		}
		qw.N().S(">")
		if voidElements[n.tag] {
			return
		}
		for _, c := range n.children {
			writeNode(qw, c)
		}
		qw.N().S("</")
		qw.N().S(n.tag)
		qw.N().S(">")
	}
}

// ScopeClass derives a stable class name from a stylesheet so that
// styles of one component never leak into another.
func ScopeClass(css string) string {
	return "sp-" + strconv.FormatUint(xxhash.Sum64String(css)%2176782336, 36)
}
