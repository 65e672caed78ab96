package fileconv

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// feedConverter parses the payload as a feed of the given format and hands
// it to render.
func feedConverter(format string, render func(*gofeed.Feed) (*Result, error)) Converter {
	return ConverterFunc(func(_ context.Context, payload []byte, _ ProgressFunc) (*Result, error) {
		feed, err := gofeed.NewParser().Parse(bytes.NewReader(payload))
		if err != nil {
			return nil, &ValidationError{Format: format, Err: err}
		}
		return render(feed)
	})
}

func feedDate(item *gofeed.Item) string {
	if item.Published != "" {
		return item.Published
	}
	return item.Updated
}

func feedItems(feed *gofeed.Feed) *node {
	items := newArray()
	for _, it := range feed.Items {
		rec := newObject()
		rec.set("title", newString(it.Title))
		rec.set("link", newString(it.Link))
		rec.set("published", newString(feedDate(it)))
		rec.set("description", newString(it.Description))
		items.items = append(items.items, rec)
	}
	return items
}

func feedToJSON(feed *gofeed.Feed) (*Result, error) {
	root := newObject()
	root.set("title", newString(feed.Title))
	root.set("description", newString(feed.Description))
	root.set("link", newString(feed.Link))
	root.set("items", feedItems(feed))
	return &Result{Data: []byte(marshalJSON(root, "  ")), MIMEType: MIMEType(JSON)}, nil
}

// feedToCSV emits one row per entry with title, link, published and
// description columns.
func feedToCSV(feed *gofeed.Feed) (*Result, error) {
	items := feedItems(feed)
	if len(items.items) == 0 {
		return &Result{Data: []byte("title,link,published,description"), MIMEType: MIMEType(CSV)}, nil
	}
	return &Result{Data: []byte(recordsToCSV(items)), MIMEType: MIMEType(CSV)}, nil
}

func (e *Engine) feedToMarkdown(feed *gofeed.Feed) (*Result, error) {

	var b strings.Builder
	if feed.Title != "" {
		fmt.Fprintf(&b, "# %s\n", feed.Title)
	}
	if feed.Description != "" {
		fmt.Fprintf(&b, "%s\n", feed.Description)
	}
	b.WriteString("\n")

	for _, item := range feed.Items {
		if item.Title != "" {
			fmt.Fprintf(&b, "## %s\n", item.Title)
		}
		if item.Published != "" {
			fmt.Fprintf(&b, "Published: %s\n\n", item.Published)
		} else if item.Updated != "" {
			fmt.Fprintf(&b, "Updated: %s\n\n", item.Updated)
		}

		content := item.Content
		if content == "" {
			content = item.Description
		}
		if strings.Contains(content, "<") && strings.Contains(content, ">") {
			if md, err := e.renderMarkdown(content); err == nil {
				content = md
			}
		}
		if content != "" {
			b.WriteString(content)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	return &Result{Data: []byte(normalizeMarkdown(b.String())), MIMEType: MIMEType(MD)}, nil
}
