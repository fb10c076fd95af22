package dom

// Document owns the html/body skeleton that components are mounted into.
type Document struct {
	html *Element
	body *Element
}

func NewDocument() *Document {
	html := NewElement("html")
	body := NewElement("body")
	Append(html, body)
	return &Document{html: html, body: body}
}

func (d *Document) Root() *Element { return d.html }
func (d *Document) Body() *Element { return d.body }

// GetElementByID returns the first element whose id attribute matches.
func (d *Document) GetElementByID(id string) *Element {
	var found *Element
	Walk(d.html, func(n Node) bool {
		e, ok := n.(*Element)
		if !ok {
			return true
		}
		if v, ok := e.Attr("id"); ok && v == id {
			found = e
			return false
		}
		return true
	})
	return found
}
