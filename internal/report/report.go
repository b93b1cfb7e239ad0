// Package report renders the final headline list as a standalone HTML page.
package report

import (
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/mattn/go-runewidth"

	"github.com/deusflow/newshub/internal/news"
)

const (
	summaryWidth = 300
	unknownDate  = "未知"
)

//go:embed report.html.tmpl
var pageTemplate string

var tmpl = template.Must(template.New("report").Parse(pageTemplate))

type badge struct {
	Class string
	Text  string
}

var badges = map[string]badge{
	news.International: {"badge-international", "🌐 国际"},
	news.Domestic:      {"badge-domestic", "🏠 国内"},
	news.Tech:          {"badge-tech", "💻 科技"},
}

var statLabels = map[string]string{
	news.International: "国际新闻",
	news.Domestic:      "国内新闻",
	news.Tech:          "科技新闻",
}

type stat struct {
	Label string
	Count int
}

type card struct {
	Badge   badge
	Title   string
	Source  string
	Date    string
	Image   string
	Summary string
	URL     string
}

type page struct {
	Title     string
	Generated string
	Total     int
	Stats     []stat
	Cards     []card
}

// Render writes the report for items to w.
func Render(w io.Writer, title string, items []news.Item, now time.Time) error {
	p := page{
		Title:     title,
		Generated: now.Format("2006-01-02 15:04:05"),
		Total:     len(items),
		Stats:     stats(items),
		Cards:     make([]card, 0, len(items)),
	}
	for _, item := range items {
		p.Cards = append(p.Cards, newCard(item))
	}

	if err := tmpl.Execute(w, p); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

func stats(items []news.Item) []stat {
	counts := news.CountByCategory(items)

	var out []stat
	for _, c := range news.CategoryOrder(counts) {
		if counts[c] == 0 && c != news.Domestic && c != news.International {
			continue
		}
		label, ok := statLabels[c]
		if !ok {
			label = c
		}
		out = append(out, stat{Label: label, Count: counts[c]})
	}
	return out
}

func newCard(item news.Item) card {
	b, ok := badges[item.Category]
	if !ok {
		b = badge{Class: "badge-other", Text: item.Category}
	}

	summary := item.Summary()
	if summary == "" {
		summary = news.NoSummary
	}

	return card{
		Badge:   b,
		Title:   item.Title,
		Source:  item.Source,
		Date:    displayDate(item.PublishedAt),
		Image:   item.Image,
		Summary: runewidth.Truncate(summary, summaryWidth, "..."),
		URL:     item.URL,
	}
}

func displayDate(published string) string {
	if published == "" {
		return unknownDate
	}
	r := []rune(published)
	if len(r) > 10 {
		r = r[:10]
	}
	return string(r)
}
