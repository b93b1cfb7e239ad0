// Package news holds the canonical headline record and the list stages that
// only filter it: title dedupe and per-category balancing.
package news

// Categories known to the classifier. Feeds may declare other types; those
// are carried through unchanged.
const (
	Domestic      = "Domestic"
	International = "International"
	Tech          = "Tech"
)

// NoSummary is the placeholder description for items whose feed gave none.
const NoSummary = "暂无简介"

// Item is one headline after field-path normalization.
type Item struct {
	Title           string
	Description     string
	URL             string
	Image           string
	Source          string
	PublishedAt     string
	Category        string
	DetailedContent string
}

// Summary is the text shown for the item: the description, or the detailed
// content when the description is only the placeholder.
func (n Item) Summary() string {
	if n.Description != "" && n.Description != NoSummary {
		return n.Description
	}
	if n.DetailedContent != "" {
		return n.DetailedContent
	}
	return n.Description
}

// CountByCategory returns how many items fall in each category.
func CountByCategory(items []Item) map[string]int {
	counts := make(map[string]int)
	for _, n := range items {
		counts[n.Category]++
	}
	return counts
}
