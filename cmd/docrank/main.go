// Command docrank ranks a batch of text documents by word-length
// statistics and writes one report line per document.
//
//	docrank [-config file] <workers> <job_file> <out_file>
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/analyzer"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/cache"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/job"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/report"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/docrank/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/tracing"
)

type args struct {
	configPath string
	workers    int
	jobFile    string
	outFile    string
}

func main() {
	a, err := parseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "docrank: %v\n", err)
		fmt.Fprintln(os.Stderr, "usage: docrank [-config file] <workers> <job_file> <out_file>")
		os.Exit(apperrors.ExitCode(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, a)
	stop()
	if err != nil {
		slog.Error("docrank failed", "error", err)
		os.Exit(apperrors.ExitCode(err))
	}
}

func parseArgs(argv []string) (args, error) {
	fs := flag.NewFlagSet("docrank", flag.ContinueOnError)
	configPath := fs.String("config", "", "path to YAML config file")
	if err := fs.Parse(argv); err != nil {
		return args{}, apperrors.Newf(apperrors.ErrInvalidConfig, "%v", err)
	}
	if fs.NArg() != 3 {
		return args{}, apperrors.Newf(apperrors.ErrInvalidConfig, "expected 3 arguments, got %d", fs.NArg())
	}
	workers, err := strconv.Atoi(fs.Arg(0))
	if err != nil || workers <= 0 {
		return args{}, apperrors.Newf(apperrors.ErrInvalidConfig, "workers must be a positive integer, got %q", fs.Arg(0))
	}
	return args{
		configPath: *configPath,
		workers:    workers,
		jobFile:    fs.Arg(1),
		outFile:    fs.Arg(2),
	}, nil
}

func run(ctx context.Context, a args) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	cfg.Job.Workers = a.workers
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	jobID := uuid.NewString()
	ctx = logger.WithJobID(ctx, jobID)
	ctx, root := tracing.StartSpan(ctx, "job", jobID)
	log := logger.FromContext(ctx)
	log.Info("starting docrank", "workers", cfg.Job.Workers, "job_file", a.jobFile, "out_file", a.outFile)

	desc, err := job.Load(a.jobFile)
	if err != nil {
		return err
	}
	docs, err := desc.Documents(cfg.Job.FragmentSize)
	if err != nil {
		return err
	}

	m := metrics.New()
	b := openBackends(ctx, cfg)
	defer b.Close()

	if cfg.Metrics.Enabled {
		shutdown := metrics.StartServer(cfg.Metrics.Port, m, map[string]http.Handler{
			"/health/live":  b.checker.LiveHandler(),
			"/health/ready": b.checker.ReadyHandler(),
		})
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(sctx); err != nil {
				log.Error("metrics server shutdown", "error", err)
			}
		}()
	}

	var opts []analyzer.Option
	var resultCache *cache.ResultCache
	if b.redis != nil {
		resultCache = cache.New(b.redis, cfg.Redis.CacheTTL)
		opts = append(opts, analyzer.WithCache(resultCache))
	}
	engine := analyzer.NewEngine(cfg.Job.Workers, m, opts...)
	summary, err := engine.Run(ctx, docs)
	if err != nil {
		return err
	}

	_, reportSpan := tracing.StartChildSpan(ctx, "report")
	entries := report.Build(docs)
	publisher := report.NewPublisher(report.NewFileSink(a.outFile), m, b.sinks()...)
	err = publisher.Publish(ctx, jobID, entries)
	reportSpan.SetAttr("entries", len(entries))
	reportSpan.End()
	if err != nil {
		return err
	}

	root.SetAttr("documents", summary.Documents)
	root.SetAttr("fragments", summary.Fragments)
	root.End()
	if cfg.Tracing.Enabled {
		root.Log(log)
	}
	if resultCache != nil {
		hits, misses := resultCache.Stats()
		log.Info("result cache", "hits", hits, "misses", misses)
	}
	log.Info("docrank finished",
		"documents", summary.Documents,
		"cached", summary.Cached,
		"failed_fragments", summary.FailedFragments,
		"out_file", a.outFile,
	)
	return nil
}
