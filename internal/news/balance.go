package news

import "sort"

// fixedOrder is the output order of the balanced list; other categories
// with a quota follow, sorted by name.
var fixedOrder = []string{Domestic, International, Tech}

// BalanceReport holds per-category counts before and after truncation.
type BalanceReport struct {
	Before map[string]int
	After  map[string]int
}

// CategoryOrder returns the order in which Balance concatenates partitions.
func CategoryOrder(quotas map[string]int) []string {
	order := append([]string(nil), fixedOrder...)

	var extra []string
	for c := range quotas {
		if !contains(fixedOrder, c) {
			extra = append(extra, c)
		}
	}
	sort.Strings(extra)

	return append(order, extra...)
}

// Balance keeps the first quotas[c] items of every category c, preserving
// arrival order inside a category, and concatenates the categories in
// CategoryOrder. Categories without a quota contribute nothing. The result
// is not a subsequence of items: a Domestic item always precedes an
// International one, whatever order they arrived in.
func Balance(items []Item, quotas map[string]int) ([]Item, BalanceReport) {
	partitions := make(map[string][]Item)
	for _, n := range items {
		partitions[n.Category] = append(partitions[n.Category], n)
	}

	report := BalanceReport{
		Before: CountByCategory(items),
		After:  make(map[string]int),
	}

	balanced := make([]Item, 0, len(items))
	for _, c := range CategoryOrder(quotas) {
		part := partitions[c]
		limit := quotas[c]
		if limit < 0 {
			limit = 0
		}
		if len(part) > limit {
			part = part[:limit]
		}
		balanced = append(balanced, part...)
		if len(part) > 0 {
			report.After[c] = len(part)
		}
	}

	return balanced, report
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
