package report

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/postgres"
)

const createReportsTable = `
CREATE TABLE IF NOT EXISTS rank_reports (
	job_id          TEXT             NOT NULL,
	position        INTEGER          NOT NULL,
	name            TEXT             NOT NULL,
	path            TEXT             NOT NULL,
	rank            DOUBLE PRECISION NOT NULL,
	max_word_length INTEGER          NOT NULL,
	max_word_count  INTEGER          NOT NULL,
	words           INTEGER          NOT NULL,
	created_at      TIMESTAMPTZ      NOT NULL DEFAULT now(),
	PRIMARY KEY (job_id, position)
)`

const insertReportRow = `
INSERT INTO rank_reports (job_id, position, name, path, rank, max_word_length, max_word_count, words)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (job_id, position) DO NOTHING`

// PostgresSink stores each job's report in the rank_reports table inside
// one transaction.
type PostgresSink struct {
	client *postgres.Client
}

func NewPostgresSink(client *postgres.Client) *PostgresSink {
	return &PostgresSink{client: client}
}

func (s *PostgresSink) Name() string { return "postgres" }

func (s *PostgresSink) Write(ctx context.Context, jobID string, entries []Entry) error {
	return s.client.InTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, createReportsTable); err != nil {
			return fmt.Errorf("creating rank_reports: %w", err)
		}
		stmt, err := tx.PrepareContext(ctx, insertReportRow)
		if err != nil {
			return fmt.Errorf("preparing insert: %w", err)
		}
		defer stmt.Close()
		for _, e := range entries {
			if _, err := stmt.ExecContext(ctx,
				jobID, e.Position, e.Name, e.Path, e.Rank,
				e.MaxWordLength, e.MaxWordCount, e.Words,
			); err != nil {
				return fmt.Errorf("inserting %s: %w", e.Name, err)
			}
		}
		return nil
	})
}
