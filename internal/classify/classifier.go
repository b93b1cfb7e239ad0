// Package classify assigns a headline to a category by counting keyword hits.
//
// Policy, in order:
//  1. tech table present and tech score > 0: Tech, whatever the other scores
//  2. domestic score > 0 and >= international score: Domestic (ties go here)
//  3. international score > 0: International
//  4. otherwise unresolved; the caller keeps the feed's declared category
package classify

import (
	"strings"

	"github.com/deusflow/newshub/internal/news"
)

// Tables holds one keyword list per category. A nil Tech list selects the
// two-category variant.
type Tables struct {
	Domestic      []string
	International []string
	Tech          []string
}

// Scores is the number of distinct keywords of each table found in the text.
type Scores struct {
	Domestic      int
	International int
	Tech          int
}

// Classifier scores headlines against fixed keyword tables. It is safe for
// concurrent use.
type Classifier struct {
	domestic      []string
	international []string
	tech          []string
	withTech      bool
}

// New builds a Classifier from t, dropping empty and repeated keywords so each
// keyword counts once. A nil t.Tech disables the Tech category.
func New(t Tables) *Classifier {
	return &Classifier{
		domestic:      distinct(t.Domestic),
		international: distinct(t.International),
		tech:          distinct(t.Tech),
		withTech:      t.Tech != nil,
	}
}

// Score counts keyword hits in title + " " + description.
func (c *Classifier) Score(title, description string) Scores {
	text := title + " " + description
	return Scores{
		Domestic:      countHits(text, c.domestic),
		International: countHits(text, c.international),
		Tech:          countHits(text, c.tech),
	}
}

// Classify returns the category for the pair, or ok=false when no table
// matched.
func (c *Classifier) Classify(title, description string) (category string, ok bool) {
	s := c.Score(title, description)

	switch {
	case c.withTech && s.Tech > 0:
		return news.Tech, true
	case s.Domestic > 0 && s.Domestic >= s.International:
		return news.Domestic, true
	case s.International > 0:
		return news.International, true
	}
	return "", false
}

// Apply returns a copy of items with categories reassigned. Unresolved items
// keep the category their feed declared. The no-summary placeholder is not
// scored as text.
func (c *Classifier) Apply(items []news.Item) []news.Item {
	out := make([]news.Item, len(items))
	for i, n := range items {
		description := n.Description
		if description == news.NoSummary {
			description = ""
		}
		if category, ok := c.Classify(n.Title, description); ok {
			n.Category = category
		}
		out[i] = n
	}
	return out
}

func countHits(text string, keywords []string) int {
	hits := 0
	for _, k := range keywords {
		if strings.Contains(text, k) {
			hits++
		}
	}
	return hits
}

func distinct(keywords []string) []string {
	if keywords == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	return out
}
