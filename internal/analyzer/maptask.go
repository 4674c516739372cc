package analyzer

import (
	"fmt"
	"os"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/document"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/fragment"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/tokenizer"
	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
)

// MapFragment tokenizes one fragment of doc and stores its histogram and
// longest words in the fragment's slot. On a read error the slot is left
// empty and the error is returned for the scheduler to log.
func MapFragment(doc *document.Document, frag fragment.Fragment) (int, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return 0, apperrors.Newf(apperrors.ErrFragmentRead, "%s fragment %d: %v", doc.Path, frag.Index, err)
	}
	defer f.Close()

	section, err := tokenizer.Resolve(f, doc.Size, frag.Offset, frag.End)
	if err != nil {
		return 0, apperrors.Newf(apperrors.ErrFragmentRead, "%s fragment %d at offset %d: %v", doc.Path, frag.Index, frag.Offset, err)
	}

	words := tokenizer.Split(section)
	doc.Slots[frag.Index] = CountWords(words)
	return len(words), nil
}

// CountWords builds a fragment slot: the word-length histogram and every
// word of maximal length, in order of appearance.
func CountWords(words []string) document.Slot {
	slot := document.Slot{Histogram: document.Histogram{}}
	maxLen := 0
	for _, w := range words {
		n := len(w)
		slot.Histogram[n]++
		switch {
		case n > maxLen:
			maxLen = n
			slot.MaxWords = []string{w}
		case n == maxLen:
			slot.MaxWords = append(slot.MaxWords, w)
		}
	}
	return slot
}

func fragmentLabel(doc *document.Document, frag fragment.Fragment) string {
	return fmt.Sprintf("%s#%d", doc.Name(), frag.Index)
}
