package models

import "strings"

// DefaultKeywords is the keyword set used when none is configured.
var DefaultKeywords = []string{"error", "warning", "failed", "success"}

// KeywordSet is an ordered list of lowercase keywords, fixed for a run.
// Order matters: it breaks ties when picking the most frequent keyword.
type KeywordSet []string

// NewKeywordSet trims and lowercases raw keywords, dropping blanks and
// duplicates while keeping first-seen order.
func NewKeywordSet(raw []string) KeywordSet {
	seen := make(map[string]struct{}, len(raw))
	ks := make(KeywordSet, 0, len(raw))
	for _, k := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" {
			continue
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		ks = append(ks, k)
	}
	return ks
}

// KeywordCounts maps keyword to the number of lines containing it.
// Used both for per-file partial counts and per-branch totals.
type KeywordCounts map[string]int

// NewKeywordCounts returns counts with every keyword present at zero.
func NewKeywordCounts(ks KeywordSet) KeywordCounts {
	counts := make(KeywordCounts, len(ks))
	for _, k := range ks {
		counts[k] = 0
	}
	return counts
}

// Equal reports whether both hold the same count for every keyword.
func (c KeywordCounts) Equal(other KeywordCounts) bool {
	if len(c) != len(other) {
		return false
	}
	for k, v := range c {
		if ov, ok := other[k]; !ok || ov != v {
			return false
		}
	}
	return true
}
