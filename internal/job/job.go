// Package job reads a job description: the fragment size, the number of
// documents, and one document path per line.
package job

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
)

// Description is a parsed job file.
type Description struct {
	FragmentSize int64
	Paths        []string
}

// Load opens and parses the job file at path.
func Load(path string) (*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrJobFile, "opening %s: %v", path, err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a job description. The two leading integers may share a line
// or sit on separate lines; every following non-blank line is a path.
func Parse(r io.Reader) (*Description, error) {
	sc := bufio.NewScanner(r)
	var header []string
	for len(header) < 2 && sc.Scan() {
		header = append(header, strings.Fields(sc.Text())...)
	}
	if err := sc.Err(); err != nil {
		return nil, apperrors.Newf(apperrors.ErrJobFile, "reading header: %v", err)
	}
	if len(header) != 2 {
		return nil, apperrors.Newf(apperrors.ErrJobFile, "header needs fragment size and document count, got %q", header)
	}

	fragmentSize, err := strconv.ParseInt(header[0], 10, 64)
	if err != nil {
		return nil, apperrors.Newf(apperrors.ErrJobFile, "fragment size %q: %v", header[0], err)
	}
	if fragmentSize <= 0 {
		return nil, apperrors.Newf(apperrors.ErrInvalidConfig, "fragment size must be positive, got %d", fragmentSize)
	}
	count, err := strconv.Atoi(header[1])
	if err != nil || count < 0 {
		return nil, apperrors.Newf(apperrors.ErrJobFile, "document count %q is not a non-negative integer", header[1])
	}

	d := &Description{FragmentSize: fragmentSize, Paths: make([]string, 0, count)}
	for len(d.Paths) < count && sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		d.Paths = append(d.Paths, line)
	}
	if err := sc.Err(); err != nil {
		return nil, apperrors.Newf(apperrors.ErrJobFile, "reading paths: %v", err)
	}
	if len(d.Paths) != count {
		return nil, apperrors.Newf(apperrors.ErrJobFile, "declared %d documents, found %d paths", count, len(d.Paths))
	}
	return d, nil
}

// Documents stats every path and builds the job's documents. A positive
// fragmentSize overrides the one in the description.
func (d *Description) Documents(fragmentSize int64) ([]*document.Document, error) {
	if fragmentSize <= 0 {
		fragmentSize = d.FragmentSize
	}
	docs := make([]*document.Document, len(d.Paths))
	for i, path := range d.Paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, apperrors.Newf(apperrors.ErrDocumentMissing, "%s: %v", path, err)
		}
		if info.IsDir() {
			return nil, apperrors.Newf(apperrors.ErrDocumentMissing, "%s is a directory", path)
		}
		doc, err := document.New(i, path, info.Size(), fragmentSize)
		if err != nil {
			return nil, fmt.Errorf("planning %s: %w", path, err)
		}
		doc.ModTime = info.ModTime()
		docs[i] = doc
	}
	return docs, nil
}
