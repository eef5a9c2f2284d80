package analytics

import (
	"strings"

	"github.com/dtnitsch/kwscan/models"
)

// Matches returns the keywords contained in line, in keyword-set order.
// Matching is case-insensitive and keywords are expected to be lowercase
// already. A keyword that occurs several times on the line is reported once.
func Matches(line string, keywords models.KeywordSet) []string {
	lower := strings.ToLower(line)

	var matched []string
	for _, keyword := range keywords {
		if strings.Contains(lower, keyword) {
			matched = append(matched, keyword)
		}
	}
	return matched
}

// CountLine adds one to counts for every keyword found on line and returns
// the number of keywords matched.
func CountLine(line string, keywords models.KeywordSet, counts models.KeywordCounts) int {
	matched := Matches(line, keywords)
	for _, keyword := range matched {
		counts[keyword]++
	}
	return len(matched)
}
