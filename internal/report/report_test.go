package report

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/document"
	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/resilience"
)

func TestLine(t *testing.T) {
	tests := []struct {
		entry Entry
		want  string
	}{
		{Entry{Name: "a.txt", Rank: 8, MaxWordLength: 5, MaxWordCount: 2}, "a.txt,8.00,5,2"},
		{Entry{Name: "b.txt", Rank: 13.0 / 6.0, MaxWordLength: 3, MaxWordCount: 1}, "b.txt,2.17,3,1"},
		{Entry{Name: "empty.txt"}, "empty.txt,0.00,0,0"},
	}
	for _, tt := range tests {
		if got := tt.entry.Line(); got != tt.want {
			t.Errorf("Line() = %q, want %q", got, tt.want)
		}
	}
}

func doc(t *testing.T, index int, path string, rank float64, maxWords ...string) *document.Document {
	t.Helper()
	d, err := document.New(index, path, 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	d.Rank = rank
	d.MaxWords = maxWords
	d.Histogram = document.Histogram{}
	for _, w := range maxWords {
		d.Histogram[len(w)]++
	}
	return d
}

func TestBuildOrdersByRank(t *testing.T) {
	docs := []*document.Document{
		doc(t, 0, "/in/low.txt", 1, "a"),
		doc(t, 1, "/in/high.txt", 8, "hello", "world"),
		doc(t, 2, "/in/tie.txt", 1, "b"),
		doc(t, 3, "/in/none.txt", 0),
	}
	entries := Build(docs)
	want := []string{"high.txt,8.00,5,2", "low.txt,1.00,1,1", "tie.txt,1.00,1,1", "none.txt,0.00,0,0"}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, e := range entries {
		if e.Line() != want[i] {
			t.Errorf("entry %d = %q, want %q", i, e.Line(), want[i])
		}
		if e.Position != i+1 {
			t.Errorf("entry %d position = %d", i, e.Position)
		}
	}
	if entries[0].Words != 2 || entries[0].Path != "/in/high.txt" {
		t.Errorf("unexpected first entry %+v", entries[0])
	}
}

func TestWrite(t *testing.T) {
	var buf bytes.Buffer
	entries := []Entry{{Name: "a", Rank: 2}, {Name: "b"}}
	if err := Write(&buf, entries); err != nil {
		t.Fatal(err)
	}
	if got := buf.String(); got != "a,2.00,0,0\nb,0.00,0,0\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestFileSink(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "out.txt")
	if err := os.WriteFile(path, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}
	sink := NewFileSink(path)
	if err := sink.Write(context.Background(), "job", []Entry{{Name: "a", Rank: 1, MaxWordLength: 1, MaxWordCount: 1}}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "a,1.00,1,1\n" {
		t.Errorf("unexpected contents %q", got)
	}
	files, _ := os.ReadDir(dir)
	if len(files) != 1 {
		t.Errorf("temp files left behind: %v", files)
	}
}

func TestFileSinkMissingDirectory(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "missing", "out.txt"))
	if err := sink.Write(context.Background(), "job", nil); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

type recordingSink struct {
	name  string
	err   error
	calls int
	got   []Entry
}

func (s *recordingSink) Name() string { return s.name }

func (s *recordingSink) Write(_ context.Context, _ string, entries []Entry) error {
	s.calls++
	s.got = entries
	return s.err
}

var fastRetry = resilience.RetryConfig{MaxAttempts: 2, InitialDelay: 1, MaxDelay: 1}

func TestPublisherSecondaryFailureIsNotFatal(t *testing.T) {
	m := metrics.New()
	primary := &recordingSink{name: "file"}
	good := &recordingSink{name: "archive"}
	bad := &recordingSink{name: "kafka", err: errors.New("broker down")}

	p := NewPublisher(primary, m, bad, good).WithRetry(fastRetry)
	entries := []Entry{{Name: "a"}}
	if err := p.Publish(context.Background(), "job", entries); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if primary.calls != 1 || good.calls != 1 {
		t.Errorf("expected one write each, got primary=%d good=%d", primary.calls, good.calls)
	}
	if bad.calls != 2 {
		t.Errorf("expected failing sink retried twice, got %d", bad.calls)
	}
	if v := testutil.ToFloat64(m.SinkWrites.WithLabelValues("kafka", "failed")); v != 1 {
		t.Errorf("expected 1 failed kafka write, got %v", v)
	}
	if v := testutil.ToFloat64(m.SinkWrites.WithLabelValues("archive", "ok")); v != 1 {
		t.Errorf("expected 1 ok archive write, got %v", v)
	}
}

func TestPublisherPrimaryFailureIsFatal(t *testing.T) {
	primary := &recordingSink{name: "file", err: errors.New("disk full")}
	secondary := &recordingSink{name: "archive"}
	err := NewPublisher(primary, nil, secondary).Publish(context.Background(), "job", nil)
	if !errors.Is(err, apperrors.ErrReportWrite) {
		t.Fatalf("expected ErrReportWrite, got %v", err)
	}
	if secondary.calls != 0 {
		t.Error("secondary sinks must not run after the primary fails")
	}
}

func TestEvents(t *testing.T) {
	events := Events("job-7", []Entry{{Name: "a.txt", Rank: 3}})
	if len(events) != 1 || events[0].Key != "a.txt" {
		t.Fatalf("unexpected events %+v", events)
	}
	ev, ok := events[0].Value.(RankEvent)
	if !ok || ev.JobID != "job-7" || ev.Rank != 3 {
		t.Errorf("unexpected payload %+v", events[0].Value)
	}
}
