// Package archive keeps a local history of ranking reports in a bbolt file,
// keyed by job ID.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/report"
)

var reportsBucket = []byte("reports")

// Record is one archived job.
type Record struct {
	JobID     string         `json:"job_id"`
	CreatedAt time.Time      `json:"created_at"`
	Entries   []report.Entry `json:"entries"`
}

type Store struct {
	db *bolt.DB
}

// Open creates the archive file and its parent directory if needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating archive directory: %w", err)
		}
	}
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening archive %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(reportsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating reports bucket: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Put(jobID string, entries []report.Entry) error {
	data, err := json.Marshal(Record{JobID: jobID, CreatedAt: time.Now().UTC(), Entries: entries})
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(reportsBucket).Put([]byte(jobID), data)
	})
}

// Ping verifies the file is still readable.
func (s *Store) Ping(context.Context) error {
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket(reportsBucket) == nil {
			return fmt.Errorf("reports bucket missing")
		}
		return nil
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}

// Sink adapts a Store to report.Sink.
type Sink struct {
	store *Store
}

func NewSink(store *Store) *Sink {
	return &Sink{store: store}
}

func (s *Sink) Name() string { return "archive" }

func (s *Sink) Write(ctx context.Context, jobID string, entries []report.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.store.Put(jobID, entries)
}
