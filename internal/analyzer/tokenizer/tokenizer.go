// Package tokenizer splits document text into words on a fixed separator
// alphabet and resolves fragment boundaries so that every word is attributed
// to exactly one fragment: the one containing its first byte.
package tokenizer

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// Separators is the word delimiter alphabet. A word is a maximal run of
// bytes outside this set.
const Separators = " ;:/?~\\.,><`[]{}()!@#$%^&-_+'=*\"|\t\r\n\x00"

var separatorTable = func() (t [256]bool) {
	for i := 0; i < len(Separators); i++ {
		t[Separators[i]] = true
	}
	return t
}()

// IsSeparator reports whether c belongs to the separator alphabet.
func IsSeparator(c byte) bool {
	return separatorTable[c]
}

// Split breaks a section into words, discarding the empty tokens produced by
// consecutive separators.
func Split(section []byte) []string {
	fields := bytes.FieldsFunc(section, func(r rune) bool {
		return r < 256 && separatorTable[r]
	})
	words := make([]string, len(fields))
	for i, f := range fields {
		words[i] = string(f)
	}
	return words
}

// Resolve returns the bytes of the fragment whose nominal range is
// [offset, end) within a document of the given size, with both ends moved so
// that no word is cut: the start skips the tail of a word begun in an earlier
// fragment, and the end runs on until the word straddling end is complete.
// A nil section means the fragment owns no words.
func Resolve(r io.ReaderAt, size, offset, end int64) ([]byte, error) {
	if offset < 0 || offset >= end || end > size {
		return nil, fmt.Errorf("invalid fragment range [%d, %d) for size %d", offset, end, size)
	}

	lo := offset
	if offset > 0 {
		lo = offset - 1
	}
	buf := make([]byte, end-lo)
	if err := readFull(r, buf, lo); err != nil {
		return nil, fmt.Errorf("reading [%d, %d): %w", lo, end, err)
	}

	section := buf
	if offset > 0 {
		prev := buf[0]
		section = buf[1:]
		if !IsSeparator(prev) && !IsSeparator(section[0]) {
			start := skipWordTail(section)
			if start == len(section) {
				return nil, nil
			}
			section = section[start:]
		}
	}

	if end < size && !IsSeparator(section[len(section)-1]) {
		tail, err := readWordTail(r, end, size)
		if err != nil {
			return nil, fmt.Errorf("extending past %d: %w", end, err)
		}
		section = append(section, tail...)
	}
	return section, nil
}

// skipWordTail returns the index of the first word start in b after the word
// that b begins inside of, or len(b) when there is none.
func skipWordTail(b []byte) int {
	i := 0
	for i < len(b) && !IsSeparator(b[i]) {
		i++
	}
	for i < len(b) && IsSeparator(b[i]) {
		i++
	}
	return i
}

// readWordTail reads bytes from pos until the first separator or size.
func readWordTail(r io.ReaderAt, pos, size int64) ([]byte, error) {
	br := bufio.NewReaderSize(io.NewSectionReader(r, pos, size-pos), 64)
	var tail []byte
	for {
		c, err := br.ReadByte()
		if errors.Is(err, io.EOF) {
			return tail, nil
		}
		if err != nil {
			return nil, err
		}
		if IsSeparator(c) {
			return tail, nil
		}
		tail = append(tail, c)
	}
}

func readFull(r io.ReaderAt, buf []byte, off int64) error {
	n, err := r.ReadAt(buf, off)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
