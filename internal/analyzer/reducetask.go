package analyzer

import (
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/document"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/ranker"
)

// ReduceDocument merges the fragment slots of doc in ascending index order
// into its histogram and longest-word list, then computes its rank.
func ReduceDocument(doc *document.Document) {
	merged := document.Histogram{}
	var maxWords []string
	maxLen := 0
	for _, slot := range doc.Slots {
		if slot.Empty() {
			continue
		}
		merged.Merge(slot.Histogram)
		switch n := slot.MaxLen(); {
		case n > maxLen:
			maxLen = n
			maxWords = append([]string(nil), slot.MaxWords...)
		case n == maxLen:
			maxWords = append(maxWords, slot.MaxWords...)
		}
	}
	delete(merged, 0)

	doc.Histogram = merged
	doc.MaxWords = maxWords
	doc.Rank = ranker.Score(merged)
	doc.ReleaseSlots()
}
