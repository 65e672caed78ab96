package fileconv

import (
	"strings"

	"github.com/tidwall/gjson"
)

func passthrough(text string) (string, error) { return text, nil }

func textToHTML(text string) (string, error) {
	return "<html><body><pre>" + text + "</pre></body></html>", nil
}

// textToJSON keeps text that already is JSON; anything else is wrapped in a
// {"text": ...} object.
func textToJSON(text string) (string, error) {
	if gjson.Valid(text) {
		return text, nil
	}
	obj := newObject()
	obj.set("text", newString(text))
	return marshalJSON(obj, ""), nil
}

// textToCSV emits one quoted cell per non-blank line. Text without any
// non-blank line is returned unchanged.
func textToCSV(text string) (string, error) {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		rows = append(rows, `"`+strings.ReplaceAll(line, `"`, `""`)+`"`)
	}
	if len(rows) == 0 {
		return text, nil
	}
	return strings.Join(rows, "\n"), nil
}

func textToXML(text string) (string, error) {
	return "<root><text><![CDATA[" + text + "]]></text></root>", nil
}

func textToMarkdown(text string) (string, error) {
	return fence("", text), nil
}
