// Package analyzer drives a ranking job: a map phase that tokenizes every
// fragment of every document in parallel, a barrier, and a reduce phase that
// merges each document's fragments and computes its rank.
package analyzer

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/document"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer/phase"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/tracing"
)

// ResultCache stores reduced documents between runs. Lookup fills doc and
// reports true on a hit.
type ResultCache interface {
	Lookup(ctx context.Context, doc *document.Document) bool
	Store(ctx context.Context, doc *document.Document)
}

// Summary describes a finished run.
type Summary struct {
	Documents       int
	Cached          int
	Fragments       int
	FailedFragments int64
	Words           int64
	Bytes           int64
	MapDuration     time.Duration
	ReduceDuration  time.Duration
}

type Engine struct {
	scheduler *phase.Scheduler
	metrics   *metrics.Metrics
	cache     ResultCache
}

type Option func(*Engine)

// WithCache enables the result cache.
func WithCache(c ResultCache) Option {
	return func(e *Engine) {
		e.cache = c
	}
}

func NewEngine(workers int, m *metrics.Metrics, opts ...Option) *Engine {
	if m == nil {
		m = metrics.New()
	}
	e := &Engine{
		scheduler: phase.NewScheduler(workers, m),
		metrics:   m,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run ranks docs in place. Only an interruption of a phase is returned as
// an error; fragment failures degrade that fragment to no words.
func (e *Engine) Run(ctx context.Context, docs []*document.Document) (Summary, error) {
	log := logger.FromContext(ctx).With("component", "analyzer")
	summary := Summary{Documents: len(docs)}

	pending := make([]*document.Document, 0, len(docs))
	for _, doc := range docs {
		summary.Bytes += doc.Size
		if e.cache != nil && e.cache.Lookup(ctx, doc) {
			doc.Cached = true
			summary.Cached++
			e.metrics.DocumentsTotal.WithLabelValues("cached").Inc()
			e.metrics.DocumentRank.Observe(doc.Rank)
			continue
		}
		pending = append(pending, doc)
	}

	var words atomic.Int64
	var mapTasks []phase.Task
	for _, doc := range pending {
		doc := doc
		for _, frag := range doc.Fragments {
			frag := frag
			mapTasks = append(mapTasks, func(context.Context) error {
				n, err := MapFragment(doc, frag)
				if err != nil {
					doc.MarkFragmentFailed()
					e.metrics.FragmentsTotal.WithLabelValues("failed").Inc()
					log.Error("fragment contributes no words",
						"fragment", fragmentLabel(doc, frag),
						"offset", frag.Offset,
						"error", err,
					)
					return err
				}
				e.metrics.FragmentsTotal.WithLabelValues("ok").Inc()
				e.metrics.WordsTotal.Add(float64(n))
				words.Add(int64(n))
				return nil
			})
		}
	}
	summary.Fragments = len(mapTasks)

	log.Info("map phase starting",
		"documents", len(pending),
		"cached", summary.Cached,
		"fragments", len(mapTasks),
		"bytes", humanize.Bytes(uint64(summary.Bytes)),
		"workers", e.scheduler.Workers(),
	)
	_, mapSpan := tracing.StartChildSpan(ctx, "map-phase")
	mapRes, err := e.scheduler.Run(ctx, "map", mapTasks)
	mapSpan.SetAttr("fragments", len(mapTasks))
	mapSpan.SetAttr("failed", mapRes.Failed)
	mapSpan.End()
	summary.MapDuration = mapRes.Duration
	summary.FailedFragments = mapRes.Failed
	summary.Words = words.Load()
	if err != nil {
		return summary, err
	}

	reduceTasks := make([]phase.Task, len(pending))
	for i, doc := range pending {
		doc := doc
		reduceTasks[i] = func(context.Context) error {
			ReduceDocument(doc)
			e.metrics.DocumentsTotal.WithLabelValues("reduced").Inc()
			e.metrics.DocumentRank.Observe(doc.Rank)
			return nil
		}
	}

	_, reduceSpan := tracing.StartChildSpan(ctx, "reduce-phase")
	reduceRes, err := e.scheduler.Run(ctx, "reduce", reduceTasks)
	reduceSpan.SetAttr("documents", len(reduceTasks))
	reduceSpan.End()
	summary.ReduceDuration = reduceRes.Duration
	if err != nil {
		return summary, err
	}

	if e.cache != nil {
		for _, doc := range pending {
			if !doc.Degraded() {
				e.cache.Store(ctx, doc)
			}
		}
	}

	log.Info("ranking complete",
		"documents", summary.Documents,
		"words", summary.Words,
		"failed_fragments", summary.FailedFragments,
		"map_duration", summary.MapDuration,
		"reduce_duration", summary.ReduceDuration,
	)
	return summary, nil
}
