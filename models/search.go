package models

import "strings"

// MatchesProduct reports whether term occurs, case-insensitively, in the
// product's name, description or category. An empty term matches everything.
func MatchesProduct(p Product, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Description), term) ||
		strings.Contains(strings.ToLower(p.Category), term)
}

// FilterProducts returns the products matching term, preserving order.
// The result is a new slice even when term is empty.
func FilterProducts(products []Product, term string) []Product {
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if MatchesProduct(p, term) {
			out = append(out, p)
		}
	}
	return out
}

// PrependSearch returns history with a new entry at the front, truncated to
// MaxSearchHistory.
func PrependSearch(history []SearchEntry, entry SearchEntry) []SearchEntry {
	n := len(history) + 1
	if n > MaxSearchHistory {
		n = MaxSearchHistory
	}
	out := make([]SearchEntry, 0, n)
	out = append(out, entry)
	for _, e := range history {
		if len(out) == MaxSearchHistory {
			break
		}
		out = append(out, e)
	}
	return out
}
