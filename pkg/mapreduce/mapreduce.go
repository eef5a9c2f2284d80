package mapreduce

import "github.com/dtnitsch/kwscan/models"

// Merge adds every partial count into total in place.
// Not safe for concurrent use; callers merge after their workers are joined.
func Merge(total, partial models.KeywordCounts) {
	for keyword, count := range partial {
		total[keyword] += count
	}
}

// Reduce aggregates partial counts into a fresh total that carries every
// keyword of the set, including those nothing matched.
func Reduce(keywords models.KeywordSet, partials []models.KeywordCounts) models.KeywordCounts {
	total := models.NewKeywordCounts(keywords)
	for _, counts := range partials {
		Merge(total, counts)
	}
	return total
}
