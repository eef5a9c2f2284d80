package mapreduce

import (
	"fmt"
	"sort"

	"github.com/dtnitsch/kwscan/models"
)

// NoKeyword is reported as most frequent when nothing matched.
const NoKeyword = "None"

// KeywordCount pairs a keyword with its total.
type KeywordCount struct {
	Keyword string `yaml:"keyword" json:"keyword"`
	Count   int    `yaml:"count" json:"count"`
}

// Ranked returns counts ordered by count descending. Equal counts keep
// keyword-set order.
func Ranked(counts models.KeywordCounts, keywords models.KeywordSet) []KeywordCount {
	ranked := make([]KeywordCount, 0, len(keywords))
	for _, k := range keywords {
		ranked = append(ranked, KeywordCount{Keyword: k, Count: counts[k]})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Count > ranked[j].Count
	})
	return ranked
}

// MostFrequent returns the keyword with the highest count, the first in
// keyword-set order on ties. It returns NoKeyword and false when every count
// is zero.
func MostFrequent(counts models.KeywordCounts, keywords models.KeywordSet) (string, bool) {
	best, bestCount := NoKeyword, 0
	for _, k := range keywords {
		if c := counts[k]; c > bestCount {
			best, bestCount = k, c
		}
	}
	return best, bestCount > 0
}

// TopKeywords returns the top n keywords formatted as "keyword:count".
func TopKeywords(counts models.KeywordCounts, keywords models.KeywordSet, n int) []string {
	ranked := Ranked(counts, keywords)

	limit := n
	if len(ranked) < n {
		limit = len(ranked)
	}
	if limit < 0 {
		limit = 0
	}

	top := make([]string, limit)
	for i := 0; i < limit; i++ {
		top[i] = fmt.Sprintf("%s:%d", ranked[i].Keyword, ranked[i].Count)
	}
	return top
}
