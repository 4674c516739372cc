// Package report turns ranked documents into report entries and delivers
// them to sinks. The output file is the authoritative sink; database, broker
// and archive sinks are optional copies.
package report

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/document"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/ranker"
)

// Entry is one report line.
type Entry struct {
	Position      int     `json:"position"`
	Name          string  `json:"name"`
	Path          string  `json:"path"`
	Rank          float64 `json:"rank"`
	MaxWordLength int     `json:"max_word_length"`
	MaxWordCount  int     `json:"max_word_count"`
	Words         int     `json:"words"`
	Cached        bool    `json:"cached"`
}

// Line formats the entry as name,rank,maxWordLength,maxWordCount with the
// rank rounded to two decimals.
func (e Entry) Line() string {
	return fmt.Sprintf("%s,%.2f,%d,%d", e.Name, e.Rank, e.MaxWordLength, e.MaxWordCount)
}

// Build orders docs by descending rank and converts them to entries.
func Build(docs []*document.Document) []Entry {
	ordered := ranker.Order(docs)
	entries := make([]Entry, len(ordered))
	for i, doc := range ordered {
		entries[i] = Entry{
			Position:      i + 1,
			Name:          doc.Name(),
			Path:          doc.Path,
			Rank:          doc.Rank,
			MaxWordLength: doc.MaxWordLength(),
			MaxWordCount:  len(doc.MaxWords),
			Words:         doc.TotalWords(),
			Cached:        doc.Cached,
		}
	}
	return entries
}

// Write prints one line per entry.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for _, e := range entries {
		if _, err := bw.WriteString(e.Line() + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Sink receives the finished report of a job.
type Sink interface {
	Name() string
	Write(ctx context.Context, jobID string, entries []Entry) error
}
