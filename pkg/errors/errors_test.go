package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestExitCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, 0},
		{"config sentinel", ErrInvalidConfig, ExitConfig},
		{"wrapped job file", fmt.Errorf("loading: %w", ErrJobFile), ExitConfig},
		{"app error document", Newf(ErrDocumentMissing, "doc %s", "a.txt"), ExitConfig},
		{"interrupted", fmt.Errorf("map phase: %w", ErrInterrupted), ExitInterrupted},
		{"report write", New(ErrReportWrite, "disk full"), ExitFailure},
		{"unknown", errors.New("boom"), ExitFailure},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := ExitCode(tt.err); got != tt.want {
				t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestAppErrorUnwrap(t *testing.T) {
	t.Parallel()

	err := Newf(ErrDocumentMissing, "stat %s", "missing.txt")
	if !errors.Is(err, ErrDocumentMissing) {
		t.Fatalf("errors.Is(%v, ErrDocumentMissing) = false", err)
	}
	if got, want := err.Error(), "document not found: stat missing.txt"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
