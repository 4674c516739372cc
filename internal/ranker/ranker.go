// Package ranker scores documents from their word-length histograms and
// orders them for the report.
package ranker

import (
	"math"
	"sort"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/document"
)

// fibLimit is the first index whose Fibonacci number overflows float64.
const fibLimit = 1477

var fibTable = func() []float64 {
	t := make([]float64, fibLimit)
	t[1] = 1
	for i := 2; i < fibLimit; i++ {
		t[i] = t[i-1] + t[i-2]
	}
	return t
}()

// Fib returns the n-th Fibonacci number with Fib(2)=1 and Fib(3)=2.
// Values are exact up to Fib(78) and rounded beyond.
func Fib(n int) float64 {
	if n <= 0 {
		return 0
	}
	if n >= fibLimit {
		return math.Inf(1)
	}
	return fibTable[n]
}

// Score computes sum(Fib(L+1) * count) / totalWords over the histogram.
// Lengths below 1 are ignored and an empty histogram scores 0.
func Score(h document.Histogram) float64 {
	lengths := make([]int, 0, len(h))
	total := 0
	for length, count := range h {
		if length <= 0 || count <= 0 {
			continue
		}
		lengths = append(lengths, length)
		total += count
	}
	if total == 0 {
		return 0
	}
	// Fixed summation order keeps the float result reproducible.
	sort.Ints(lengths)
	var sum float64
	for _, length := range lengths {
		sum += Fib(length+1) * float64(h[length])
	}
	return sum / float64(total)
}

// Order returns the documents sorted by descending rank. Equal ranks keep
// their input order.
func Order(docs []*document.Document) []*document.Document {
	result := make([]*document.Document, len(docs))
	copy(result, docs)
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Rank > result[j].Rank
	})
	return result
}
