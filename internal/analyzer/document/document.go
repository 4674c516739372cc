// Package document holds the per-document state shared by the map and
// reduce phases. Fragment slots are addressed by index and each slot is
// written by exactly one map task, so slots need no locking; the merged
// fields are written only by the document's own reduce task.
package document

import (
	"strings"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/fragment"
)

// Histogram maps a word length to its number of occurrences.
type Histogram map[int]int

// Total returns the number of words counted.
func (h Histogram) Total() int {
	total := 0
	for _, c := range h {
		total += c
	}
	return total
}

// Merge adds every count of other into h.
func (h Histogram) Merge(other Histogram) {
	for length, c := range other {
		h[length] += c
	}
}

// Slot is the result of one map task.
type Slot struct {
	Histogram Histogram
	MaxWords  []string
}

// Empty reports whether the fragment contributed no words.
func (s Slot) Empty() bool {
	return len(s.Histogram) == 0
}

// MaxLen returns the length of the fragment's longest words.
func (s Slot) MaxLen() int {
	if len(s.MaxWords) == 0 {
		return 0
	}
	return len(s.MaxWords[0])
}

// Document is one input file of a job.
type Document struct {
	Index        int
	Path         string
	Size         int64
	ModTime      time.Time // as observed when the job was planned; zero if unknown
	FragmentSize int64
	Fragments    []fragment.Fragment
	Slots        []Slot

	// Set by the reduce phase (or restored from cache).
	Histogram Histogram
	MaxWords  []string
	Rank      float64
	Cached    bool

	failed atomic.Int32
}

// New plans the document's fragments and allocates one empty slot per
// fragment.
func New(index int, path string, size, fragmentSize int64) (*Document, error) {
	frags, err := fragment.Plan(size, fragmentSize)
	if err != nil {
		return nil, err
	}
	return &Document{
		Index:        index,
		Path:         path,
		Size:         size,
		FragmentSize: fragmentSize,
		Fragments:    frags,
		Slots:        make([]Slot, len(frags)),
		Histogram:    Histogram{},
	}, nil
}

// FragmentCount returns the number of fragments.
func (d *Document) FragmentCount() int {
	return len(d.Fragments)
}

// Name returns the last '/'-delimited segment of the path.
func (d *Document) Name() string {
	if i := strings.LastIndexByte(d.Path, '/'); i >= 0 {
		return d.Path[i+1:]
	}
	return d.Path
}

// MaxWordLength returns the length of the longest words, 0 if none.
func (d *Document) MaxWordLength() int {
	if len(d.MaxWords) == 0 {
		return 0
	}
	return len(d.MaxWords[0])
}

// TotalWords returns the word count of the merged histogram.
func (d *Document) TotalWords() int {
	return d.Histogram.Total()
}

// MarkFragmentFailed records that a fragment could not be read. Safe for
// concurrent use by map tasks of the same document.
func (d *Document) MarkFragmentFailed() {
	d.failed.Add(1)
}

// Degraded reports whether any fragment failed to read.
func (d *Document) Degraded() bool {
	return d.failed.Load() > 0
}

// ReleaseSlots drops fragment results once they have been merged.
func (d *Document) ReleaseSlots() {
	for i := range d.Slots {
		d.Slots[i] = Slot{}
	}
}
