package fileconv

import (
	"errors"
	"strconv"
	"strings"
)

const xmlDeclaration = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

var errNullRecord = errors.New("first record is null")

func jsonToCSV(text string) (string, error) {
	root, err := parseJSON(text)
	if err != nil {
		return "", err
	}
	first := root
	if root.kind == arrayNode && len(root.items) > 0 {
		first = root.items[0]
	}
	if first.kind == nullNode {
		return "", &ValidationError{Format: JSON, Err: errNullRecord}
	}
	return recordsToCSV(root), nil
}

// recordsToCSV flattens a list of records into CSV. A non-array root is
// treated as a single record. The header comes from the first record only;
// string cells are quoted verbatim, without escaping.
func recordsToCSV(root *node) string {
	rows := []*node{root}
	if root != nil && root.kind == arrayNode {
		rows = root.items
	}
	if len(rows) == 0 {
		return ""
	}

	header := recordKeys(rows[0])
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(header, ","))

	cells := make([]string, len(header))
	for _, row := range rows {
		for i, key := range header {
			v := recordField(row, key)
			if v != nil && v.kind == stringNode {
				cells[i] = `"` + v.str + `"`
			} else {
				cells[i] = scalarString(v)
			}
		}
		lines = append(lines, strings.Join(cells, ","))
	}
	return strings.Join(lines, "\n")
}

func recordKeys(n *node) []string {
	if n == nil {
		return nil
	}
	switch n.kind {
	case objectNode:
		return n.keys()
	case arrayNode:
		keys := make([]string, len(n.items))
		for i := range n.items {
			keys[i] = strconv.Itoa(i)
		}
		return keys
	}
	return nil
}

func recordField(n *node, key string) *node {
	if n == nil {
		return nil
	}
	switch n.kind {
	case objectNode:
		return n.get(key)
	case arrayNode:
		i, err := strconv.Atoi(key)
		if err != nil || i < 0 || i >= len(n.items) {
			return nil
		}
		return n.items[i]
	}
	return nil
}

func jsonToTSV(text string) (string, error) {
	out, err := jsonToCSV(text)
	if err != nil {
		return "", err
	}
	return csvToTSV(out), nil
}

func jsonToXML(text string) (string, error) {
	root, err := parseJSON(text)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(xmlDeclaration)
	writeXMLValue(&b, root, "root")
	return b.String(), nil
}

// writeXMLValue emits n as an element called name. Object keys and array
// indexes become child element names; nothing is escaped.
func writeXMLValue(b *strings.Builder, n *node, name string) {
	b.WriteString("<" + name + ">")
	switch n.kind {
	case objectNode:
		for _, f := range n.fields {
			if f.val != nil {
				writeXMLChild(b, f.val, f.key)
			}
		}
	case arrayNode:
		for i, it := range n.items {
			writeXMLChild(b, it, strconv.Itoa(i))
		}
	}
	b.WriteString("</" + name + ">")
}

func writeXMLChild(b *strings.Builder, n *node, name string) {
	switch n.kind {
	case objectNode, arrayNode, nullNode:
		writeXMLValue(b, n, name)
	default:
		b.WriteString("<" + name + ">" + scalarString(n) + "</" + name + ">")
	}
}

// jsonToText pretty-prints valid JSON and passes anything else through.
func jsonToText(text string) (string, error) {
	root, err := parseJSON(text)
	if err != nil {
		return text, nil
	}
	return marshalJSON(root, "  "), nil
}

func jsonToMarkdown(text string) (string, error) {
	return fence("json", text), nil
}

func fence(lang, text string) string {
	return "```" + lang + "\n" + text + "\n```"
}
