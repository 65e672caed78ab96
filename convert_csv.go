package fileconv

import "strings"

// nonBlankLines splits text on \n and drops lines that are empty after
// trimming. The kept lines are not trimmed.
func nonBlankLines(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}

// splitCells splits a delimited line and cleans every cell: surrounding
// whitespace goes, then one leading and one trailing double quote.
func splitCells(line, sep string) []string {
	cells := strings.Split(line, sep)
	for i, c := range cells {
		c = strings.TrimSpace(c)
		c = strings.TrimPrefix(c, `"`)
		c = strings.TrimSuffix(c, `"`)
		cells[i] = c
	}
	return cells
}

// csvRecords parses CSV text into an array of records keyed by the header
// line. Cells missing from a short row stay undefined.
func csvRecords(text string) *node {
	arr := newArray()
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return arr
	}

	header := splitCells(lines[0], ",")
	for _, line := range lines[1:] {
		values := splitCells(line, ",")
		rec := newObject()
		for i, key := range header {
			if i < len(values) {
				rec.set(key, newString(values[i]))
			} else {
				rec.set(key, nil)
			}
		}
		arr.items = append(arr.items, rec)
	}
	return arr
}

func csvToJSON(text string) (string, error) {
	return marshalJSON(csvRecords(text), "  "), nil
}

func csvToTSV(text string) string {
	return strings.ReplaceAll(text, ",", "\t")
}

func tsvToCSV(text string) string {
	return strings.ReplaceAll(text, "\t", ",")
}

func csvToXML(text string) (string, error) {
	return jsonToXML(marshalJSON(csvRecords(text), ""))
}

func csvToText(text string) (string, error) {
	return jsonToText(marshalJSON(csvRecords(text), "  "))
}

func tsvToJSON(text string) (string, error) {
	return csvToJSON(tsvToCSV(text))
}

func tsvToXML(text string) (string, error) {
	return csvToXML(tsvToCSV(text))
}

// delimitedToMarkdown renders raw delimited lines as a pipe table. Cells are
// split on sep without any quote handling.
func delimitedToMarkdown(text, sep string) string {
	lines := nonBlankLines(text)
	if len(lines) == 0 {
		return ""
	}

	header := strings.Split(lines[0], sep)
	var b strings.Builder
	writeTableRow(&b, header)
	sepRow := make([]string, len(header))
	for i := range sepRow {
		sepRow[i] = "---"
	}
	writeTableRow(&b, sepRow)
	for _, line := range lines[1:] {
		writeTableRow(&b, strings.Split(line, sep))
	}
	return b.String()
}

func writeTableRow(b *strings.Builder, cells []string) {
	b.WriteString("| ")
	b.WriteString(strings.Join(cells, " | "))
	b.WriteString(" |\n")
}
