package fileconv

import (
	"encoding/xml"
	"errors"
	"strings"
)

var (
	errNoRootElement = errors.New("no root element")
	errNoRecords     = errors.New("root element has no children")
)

type xmlElement struct {
	name     string
	attrs    []xml.Attr
	children []xmlChild
}

// xmlChild is either an element or a run of character data.
type xmlChild struct {
	elem *xmlElement
	text string
}

func (e *xmlElement) appendText(s string) {
	if n := len(e.children); n > 0 && e.children[n-1].elem == nil {
		e.children[n-1].text += s
		return
	}
	e.children = append(e.children, xmlChild{text: s})
}

func (e *xmlElement) hasElementChildren() bool {
	for _, c := range e.children {
		if c.elem != nil {
			return true
		}
	}
	return false
}

func qualifiedName(n xml.Name) string {
	if n.Space == "" {
		return n.Local
	}
	return n.Space + ":" + n.Local
}

// parseXMLDocument builds a minimal element tree. Parsing is lenient: HTML
// entities are accepted, mismatched end tags are tolerated and a syntax error
// ends the parse with whatever was built so far. Comments, processing
// instructions and directives are dropped; CDATA is treated as text.
func parseXMLDocument(text string) (*xmlElement, error) {
	d := xml.NewDecoder(strings.NewReader(text))
	d.Strict = false
	d.Entity = xml.HTMLEntity

	var (
		root  *xmlElement
		stack []*xmlElement
	)

loop:
	for {
		tok, err := d.RawToken()
		if err != nil {
			break
		}

		switch t := tok.(type) {
		case xml.StartElement:
			el := &xmlElement{
				name:  qualifiedName(t.Name),
				attrs: append([]xml.Attr(nil), t.Attr...),
			}
			if len(stack) == 0 {
				if root != nil {
					break loop
				}
				root = el
			} else {
				parent := stack[len(stack)-1]
				parent.children = append(parent.children, xmlChild{elem: el})
			}
			stack = append(stack, el)

		case xml.EndElement:
			name := qualifiedName(t.Name)
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i].name == name {
					stack = stack[:i]
					break
				}
			}
			if root != nil && len(stack) == 0 {
				break loop
			}

		case xml.CharData:
			if len(stack) > 0 {
				stack[len(stack)-1].appendText(string(t))
			}
		}
	}

	if root == nil {
		return nil, &ValidationError{Format: XML, Err: errNoRootElement}
	}
	return root, nil
}

// elementToNode converts an element to the tree shape used for JSON output.
// Attributes land under "@attributes", repeated child names collapse into an
// array and an element holding only text becomes that text.
func elementToNode(el *xmlElement) *node {
	obj := newObject()
	if len(el.attrs) > 0 {
		attrs := newObject()
		for _, a := range el.attrs {
			attrs.set(qualifiedName(a.Name), newString(a.Value))
		}
		obj.set("@attributes", attrs)
	}

	mixed := el.hasElementChildren()
	for _, c := range el.children {
		var (
			name string
			val  *node
		)
		if c.elem != nil {
			name, val = c.elem.name, elementToNode(c.elem)
		} else {
			if mixed && strings.TrimSpace(c.text) == "" {
				continue
			}
			name, val = "#text", newString(c.text)
		}

		existing := obj.get(name)
		switch {
		case existing == nil:
			obj.set(name, val)
		case existing.kind == arrayNode:
			existing.items = append(existing.items, val)
		default:
			obj.set(name, newArray(existing, val))
		}
	}

	if len(obj.fields) == 1 && obj.fields[0].key == "#text" {
		return obj.fields[0].val
	}
	return obj
}

func parseXMLTree(text string) (*node, error) {
	root, err := parseXMLDocument(text)
	if err != nil {
		return nil, err
	}
	return elementToNode(root), nil
}

func xmlToJSON(text string) (string, error) {
	tree, err := parseXMLTree(text)
	if err != nil {
		return "", err
	}
	return marshalJSON(tree, "  "), nil
}

// xmlToCSV flattens the first child group under the root element into CSV.
func xmlToCSV(text string) (string, error) {
	tree, err := parseXMLTree(text)
	if err != nil {
		return "", err
	}
	if tree.kind != objectNode {
		return "", &ValidationError{Format: XML, Err: errNoRecords}
	}
	keys := tree.keys()
	if len(keys) == 0 {
		return "", &ValidationError{Format: XML, Err: errNoRecords}
	}

	records := tree.get(keys[0])
	if records.kind != arrayNode {
		records = newArray(records)
	}
	return recordsToCSV(records), nil
}

func xmlToTSV(text string) (string, error) {
	out, err := xmlToCSV(text)
	if err != nil {
		return "", err
	}
	return csvToTSV(out), nil
}

func xmlToText(text string) (string, error) {
	tree, err := parseXMLTree(text)
	if err != nil {
		return "", err
	}
	return marshalJSON(tree, "  "), nil
}

func xmlToMarkdown(text string) (string, error) {
	return fence("xml", text), nil
}
