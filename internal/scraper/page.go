package scraper

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"golang.org/x/net/html/charset"
)

// Page is what an article page yields for enrichment.
type Page struct {
	Description string
	Image       string // absolute
	Source      string
	Text        string // readable body text
}

const (
	minSourceRunes = 2
	maxSourceRunes = 10
	maxTextRunes   = 1800
)

// sourceMarker matches an inline "来源：name" label anywhere in the markup.
var sourceMarker = regexp.MustCompile(`来源[：:]\s*([^\s<>]{2,10})`)

// ParsePage decodes body using the charset declared by contentType or the
// markup itself, then extracts the page fields. pageURL resolves relative
// image links.
func ParsePage(body io.Reader, contentType string, pageURL *url.URL) (*Page, error) {
	utf8Body, err := charset.NewReader(body, contentType)
	if err != nil {
		return nil, fmt.Errorf("detect charset: %w", err)
	}
	raw, err := io.ReadAll(utf8Body)
	if err != nil {
		return nil, fmt.Errorf("read page: %w", err)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("parse page: %w", err)
	}

	page := &Page{
		Description: extractDescription(doc),
		Image:       extractImage(doc, pageURL),
		Source:      extractSource(doc, string(raw)),
	}

	if pageURL != nil {
		if article, err := readability.FromReader(bytes.NewReader(raw), pageURL); err == nil {
			page.Text = cleanContent(article.TextContent)
		}
	}

	return page, nil
}

// extractDescription returns the first meta description or og:description
// in document order.
func extractDescription(doc *goquery.Document) string {
	var desc string
	doc.Find("meta").EachWithBreak(func(i int, s *goquery.Selection) bool {
		key := metaKey(s)
		if key != "description" && key != "og:description" {
			return true
		}
		content, _ := s.Attr("content")
		desc = strings.TrimSpace(content)
		return desc == ""
	})
	return desc
}

func extractImage(doc *goquery.Document, pageURL *url.URL) string {
	var image string
	doc.Find("meta").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if metaKey(s) != "og:image" {
			return true
		}
		content, _ := s.Attr("content")
		content = strings.TrimSpace(content)
		if content == "" {
			return true
		}
		image = resolve(pageURL, content)
		return image == ""
	})
	return image
}

func metaKey(s *goquery.Selection) string {
	if v, ok := s.Attr("property"); ok && v != "" {
		return strings.ToLower(strings.TrimSpace(v))
	}
	v, _ := s.Attr("name")
	return strings.ToLower(strings.TrimSpace(v))
}

func resolve(base *url.URL, ref string) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base == nil {
		if u.IsAbs() {
			return u.String()
		}
		return ""
	}
	return base.ResolveReference(u).String()
}

// extractSource looks for the outlet name: an inline source marker first,
// then span and div elements whose class mentions "source".
func extractSource(doc *goquery.Document, raw string) string {
	if m := sourceMarker.FindStringSubmatch(raw); m != nil {
		if name := strings.TrimSpace(html.UnescapeString(m[1])); utf8.RuneCountInString(name) >= minSourceRunes {
			return name
		}
	}

	for _, tag := range []string{"span", "div"} {
		var found string
		doc.Find(tag).EachWithBreak(func(i int, s *goquery.Selection) bool {
			class, _ := s.Attr("class")
			if !strings.Contains(strings.ToLower(class), "source") || s.Children().Length() > 0 {
				return true
			}
			name := strings.TrimSpace(s.Text())
			if n := utf8.RuneCountInString(name); n >= minSourceRunes && n <= maxSourceRunes {
				found = name
				return false
			}
			return true
		})
		if found != "" {
			return found
		}
	}
	return ""
}

// cleanContent normalizes readable text into paragraphs and limits its
// length, keeping whole paragraphs.
func cleanContent(content string) string {
	var paragraphs []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			paragraphs = append(paragraphs, line)
		}
	}

	result := strings.Join(paragraphs, "\n\n")
	if utf8.RuneCountInString(result) <= maxTextRunes {
		return result
	}

	var selected []string
	total := 0
	for _, p := range paragraphs {
		n := utf8.RuneCountInString(p)
		if total+n > maxTextRunes {
			break
		}
		selected = append(selected, p)
		total += n + 2
	}
	if len(selected) == 0 {
		return string([]rune(result)[:maxTextRunes])
	}
	return strings.Join(selected, "\n\n")
}
