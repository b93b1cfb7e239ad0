package news

import "strings"

// NormalizeTitle is the identity key used for dedupe: trimmed and case-folded.
func NormalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Dedupe keeps the first item for every normalized title, in input order.
// Items whose normalized title is empty are dropped. It returns the kept
// items and how many were removed.
func Dedupe(items []Item) ([]Item, int) {
	seen := make(map[string]struct{}, len(items))
	unique := make([]Item, 0, len(items))

	for _, n := range items {
		key := NormalizeTitle(n.Title)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, n)
	}

	return unique, len(items) - len(unique)
}
