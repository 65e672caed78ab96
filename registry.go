package fileconv

import "slices"

type route struct {
	target string
	conv   Converter
}

// registry maps source formats to their ordered list of targets. It is filled
// once by buildRegistry and only read afterwards.
type registry struct {
	routes map[string][]route
}

func newRegistry() *registry {
	return &registry{routes: make(map[string][]route)}
}

func (r *registry) add(source, target string, conv Converter) {
	r.routes[source] = append(r.routes[source], route{target: target, conv: conv})
}

// lookup finds the converter for a pair. Only the source is canonicalized;
// the target must match exactly.
func (r *registry) lookup(source, target string) (Converter, bool) {
	for _, rt := range r.routes[Canonicalize(source)] {
		if rt.target == target {
			return rt.conv, true
		}
	}
	return nil, false
}

func (r *registry) targets(source string) []string {
	routes := r.routes[Canonicalize(source)]
	out := make([]string, 0, len(routes))
	for _, rt := range routes {
		out = append(out, rt.target)
	}
	return out
}

func (e *Engine) buildRegistry() *registry {
	r := newRegistry()
	text := func(source, target string, fn func(string) (string, error)) {
		r.add(source, target, bracketed(textConverter(MIMEType(target), fn)))
	}

	text(TXT, HTML, textToHTML)
	text(TXT, JSON, textToJSON)
	text(TXT, CSV, textToCSV)
	r.add(TXT, XML, bracketed(textConverter("text/xml", textToXML)))
	text(TXT, MD, textToMarkdown)
	r.add(TXT, PDF, bracketed(documentConverter(readTextParagraphs, writePDF, PDF)))
	r.add(TXT, DOCX, bracketed(documentConverter(readTextParagraphs, writeDOCX, DOCX)))

	text(JSON, CSV, jsonToCSV)
	text(JSON, TSV, jsonToTSV)
	text(JSON, XML, jsonToXML)
	text(JSON, TXT, jsonToText)
	text(JSON, MD, jsonToMarkdown)
	r.add(JSON, XLSX, bracketed(ConverterFunc(jsonToXLSX)))

	text(CSV, JSON, csvToJSON)
	text(CSV, TSV, func(s string) (string, error) { return csvToTSV(s), nil })
	text(CSV, XML, csvToXML)
	text(CSV, TXT, csvToText)
	text(CSV, MD, func(s string) (string, error) { return delimitedToMarkdown(s, ","), nil })
	r.add(CSV, XLSX, bracketed(ConverterFunc(csvToXLSX)))

	text(XML, JSON, xmlToJSON)
	text(XML, CSV, xmlToCSV)
	text(XML, TSV, xmlToTSV)
	text(XML, TXT, xmlToText)
	text(XML, MD, xmlToMarkdown)

	text(HTML, TXT, htmlToText)
	text(HTML, MD, htmlToMarkdown)
	r.add(HTML, PDF, bracketed(documentConverter(readHTMLParagraphs, writePDF, PDF)))
	r.add(HTML, DOCX, bracketed(documentConverter(readHTMLParagraphs, writeDOCX, DOCX)))

	text(TSV, CSV, func(s string) (string, error) { return tsvToCSV(s), nil })
	text(TSV, JSON, tsvToJSON)
	text(TSV, XML, tsvToXML)
	text(TSV, TXT, passthrough)
	text(TSV, MD, func(s string) (string, error) { return delimitedToMarkdown(s, "\t"), nil })

	text(MD, HTML, markdownToHTML)
	text(MD, TXT, passthrough)
	r.add(MD, PDF, bracketed(documentConverter(readMarkdownParagraphs, writePDF, PDF)))
	r.add(MD, DOCX, bracketed(documentConverter(readMarkdownParagraphs, writeDOCX, DOCX)))

	r.add(PDF, TXT, bracketed(ConverterFunc(e.pdfToText)))
	r.add(PDF, HTML, bracketed(documentConverter(e.readPDFParagraphs, writeHTML, HTML)))
	r.add(PDF, DOCX, bracketed(documentConverter(e.readPDFParagraphs, writeDOCX, DOCX)))

	r.add(DOCX, HTML, bracketed(ConverterFunc(docxToHTML)))
	r.add(DOCX, TXT, bracketed(documentConverter(readDOCXParagraphs, writeText, TXT)))
	r.add(DOCX, MD, bracketed(ConverterFunc(e.docxToMarkdown)))
	r.add(DOCX, PDF, bracketed(documentConverter(readDOCXParagraphs, writePDF, PDF)))

	r.add(XLSX, CSV, bracketed(ConverterFunc(xlsxToCSV)))
	r.add(XLSX, JSON, bracketed(ConverterFunc(xlsxToJSON)))
	r.add(XLS, CSV, bracketed(ConverterFunc(xlsToCSV)))
	r.add(XLS, JSON, bracketed(ConverterFunc(xlsToJSON)))

	for _, feed := range []string{RSS, ATOM} {
		r.add(feed, JSON, bracketed(feedConverter(feed, feedToJSON)))
		r.add(feed, CSV, bracketed(feedConverter(feed, feedToCSV)))
		r.add(feed, MD, bracketed(feedConverter(feed, e.feedToMarkdown)))
	}

	for _, src := range imageFormats {
		for _, dst := range imageFormats {
			if src != dst {
				r.add(src, dst, e.imageConverter(dst))
			}
		}
	}

	for _, src := range audioFormats {
		for _, dst := range audioFormats {
			if src != dst {
				r.add(src, dst, bracketed(e.mediaConverter(src, dst)))
			}
		}
	}
	for _, src := range videoFormats {
		for _, dst := range slices.Concat(videoFormats, []string{MP3, WAV}) {
			if src != dst {
				r.add(src, dst, bracketed(e.mediaConverter(src, dst)))
			}
		}
	}

	return r
}
