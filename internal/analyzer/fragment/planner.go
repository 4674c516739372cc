// Package fragment plans how a document is cut into byte-range fragments.
package fragment

import (
	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
)

// Fragment is the nominal byte range [Offset, End) handled by one map task.
type Fragment struct {
	Index  int
	Offset int64
	End    int64
}

// Count returns ceil(size / fragmentSize) without overflowing for
// fragment sizes near math.MaxInt64.
func Count(size, fragmentSize int64) int {
	if size <= 0 {
		return 0
	}
	return int(1 + (size-1)/fragmentSize)
}

// Plan splits a document of the given size into fragments of fragmentSize
// bytes; the last fragment may be shorter.
func Plan(size, fragmentSize int64) ([]Fragment, error) {
	if fragmentSize <= 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "fragment size must be positive, got %d", fragmentSize)
	}
	n := Count(size, fragmentSize)
	frags := make([]Fragment, n)
	for i := range frags {
		off := int64(i) * fragmentSize
		frags[i] = Fragment{
			Index:  i,
			Offset: off,
			End:    off + min(fragmentSize, size-off),
		}
	}
	return frags, nil
}
