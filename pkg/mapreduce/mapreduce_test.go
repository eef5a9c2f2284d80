package mapreduce

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/dtnitsch/kwscan/models"
)

var testKeywords = models.KeywordSet{"error", "warning", "failed", "success"}

func TestReduce(t *testing.T) {
	partials := []models.KeywordCounts{
		{"error": 2, "warning": 1, "failed": 0, "success": 0},
		{"error": 0, "warning": 0, "failed": 1, "success": 0},
	}

	got := Reduce(testKeywords, partials)
	want := models.KeywordCounts{"error": 2, "warning": 1, "failed": 1, "success": 0}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Reduce() mismatch (-want +got):\n%s", diff)
	}
}

func TestReduce_OrderIndependent(t *testing.T) {
	a := models.KeywordCounts{"error": 3, "warning": 1, "failed": 0, "success": 2}
	b := models.KeywordCounts{"error": 1, "warning": 0, "failed": 4, "success": 0}
	c := models.KeywordCounts{"error": 0, "warning": 7, "failed": 1, "success": 1}

	forward := Reduce(testKeywords, []models.KeywordCounts{a, b, c})
	backward := Reduce(testKeywords, []models.KeywordCounts{c, b, a})
	if diff := cmp.Diff(forward, backward); diff != "" {
		t.Errorf("Reduce() depends on merge order (-forward +backward):\n%s", diff)
	}
}

func TestReduce_NoPartials(t *testing.T) {
	got := Reduce(testKeywords, nil)
	if diff := cmp.Diff(models.NewKeywordCounts(testKeywords), got); diff != "" {
		t.Errorf("Reduce(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestMerge(t *testing.T) {
	total := models.NewKeywordCounts(testKeywords)
	Merge(total, models.KeywordCounts{"error": 2})
	Merge(total, models.KeywordCounts{"error": 1, "success": 4})

	want := models.KeywordCounts{"error": 3, "warning": 0, "failed": 0, "success": 4}
	if diff := cmp.Diff(want, total); diff != "" {
		t.Errorf("Merge() mismatch (-want +got):\n%s", diff)
	}
}

func TestMostFrequent(t *testing.T) {
	tests := []struct {
		name   string
		counts models.KeywordCounts
		want   string
		wantOK bool
	}{
		{"tie goes to first in set order", models.KeywordCounts{"error": 3, "warning": 3, "failed": 1}, "error", true},
		{"tie not involving first keyword", models.KeywordCounts{"error": 1, "warning": 2, "failed": 2}, "warning", true},
		{"clear winner", models.KeywordCounts{"error": 2, "warning": 1, "failed": 1, "success": 0}, "error", true},
		{"last keyword wins", models.KeywordCounts{"success": 9}, "success", true},
		{"all zero", models.NewKeywordCounts(testKeywords), NoKeyword, false},
		{"empty", models.KeywordCounts{}, NoKeyword, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MostFrequent(tt.counts, testKeywords)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("MostFrequent() = (%q, %v), want (%q, %v)", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestRanked(t *testing.T) {
	counts := models.KeywordCounts{"error": 1, "warning": 5, "failed": 1, "success": 0}
	want := []KeywordCount{
		{Keyword: "warning", Count: 5},
		{Keyword: "error", Count: 1},
		{Keyword: "failed", Count: 1},
		{Keyword: "success", Count: 0},
	}
	if diff := cmp.Diff(want, Ranked(counts, testKeywords)); diff != "" {
		t.Errorf("Ranked() mismatch (-want +got):\n%s", diff)
	}
}

func TestTopKeywords(t *testing.T) {
	counts := models.KeywordCounts{"error": 2, "warning": 4, "failed": 0, "success": 1}

	if diff := cmp.Diff([]string{"warning:4", "error:2"}, TopKeywords(counts, testKeywords, 2)); diff != "" {
		t.Errorf("TopKeywords(2) mismatch (-want +got):\n%s", diff)
	}
	if got := TopKeywords(counts, testKeywords, 10); len(got) != 4 {
		t.Errorf("TopKeywords(10) returned %d entries, want 4", len(got))
	}
	if got := TopKeywords(counts, testKeywords, -1); len(got) != 0 {
		t.Errorf("TopKeywords(-1) returned %d entries, want 0", len(got))
	}
}
