package feed

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"
)

// parseRSS turns an RSS/Atom document into generic records so the usual
// field paths apply. Keys: title, description, url, image, source,
// publishedAt, author, categories.
func parseRSS(body []byte) ([]any, error) {
	parsed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	records := make([]any, 0, len(parsed.Items))
	for _, it := range parsed.Items {
		if it == nil {
			continue
		}
		rec := map[string]any{
			"title":       it.Title,
			"description": it.Description,
			"url":         it.Link,
			"source":      parsed.Title,
			"publishedAt": it.Published,
		}
		if it.Description == "" && it.Content != "" {
			rec["description"] = it.Content
		}
		if img := itemImage(it); img != "" {
			rec["image"] = img
		}
		if it.Author != nil && it.Author.Name != "" {
			rec["author"] = it.Author.Name
		}
		if len(it.Categories) > 0 {
			cats := make([]any, 0, len(it.Categories))
			for _, c := range it.Categories {
				cats = append(cats, c)
			}
			rec["categories"] = cats
		}
		records = append(records, rec)
	}
	return records, nil
}

func itemImage(it *gofeed.Item) string {
	if it.Image != nil && it.Image.URL != "" {
		return it.Image.URL
	}
	for _, enc := range it.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return enc.URL
		}
	}
	return ""
}
