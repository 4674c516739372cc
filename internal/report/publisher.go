package report

import (
	"context"
	"log/slog"

	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/resilience"
)

// Publisher delivers a report to the primary sink and then, best effort,
// to every secondary sink.
type Publisher struct {
	primary   Sink
	secondary []Sink
	retry     resilience.RetryConfig
	metrics   *metrics.Metrics
	logger    *slog.Logger
}

func NewPublisher(primary Sink, m *metrics.Metrics, secondary ...Sink) *Publisher {
	if m == nil {
		m = metrics.New()
	}
	return &Publisher{
		primary:   primary,
		secondary: secondary,
		metrics:   m,
		logger:    slog.Default().With("component", "report-publisher"),
	}
}

// WithRetry overrides the retry policy used for secondary sinks.
func (p *Publisher) WithRetry(cfg resilience.RetryConfig) *Publisher {
	p.retry = cfg
	return p
}

// Publish writes entries to the primary sink; its failure is returned as
// ErrReportWrite. Secondary sink failures are logged and counted only.
func (p *Publisher) Publish(ctx context.Context, jobID string, entries []Entry) error {
	if err := p.primary.Write(ctx, jobID, entries); err != nil {
		p.metrics.SinkWrites.WithLabelValues(p.primary.Name(), "failed").Inc()
		return apperrors.Newf(apperrors.ErrReportWrite, "%s sink: %v", p.primary.Name(), err)
	}
	p.metrics.SinkWrites.WithLabelValues(p.primary.Name(), "ok").Inc()

	for _, sink := range p.secondary {
		err := resilience.Retry(ctx, "report-"+sink.Name(), p.retry, func() error {
			return sink.Write(ctx, jobID, entries)
		})
		if err != nil {
			p.metrics.SinkWrites.WithLabelValues(sink.Name(), "failed").Inc()
			p.logger.Warn("secondary sink failed", "sink", sink.Name(), "job_id", jobID, "error", err)
			continue
		}
		p.metrics.SinkWrites.WithLabelValues(sink.Name(), "ok").Inc()
		p.logger.Debug("report delivered", "sink", sink.Name(), "entries", len(entries))
	}
	return nil
}
