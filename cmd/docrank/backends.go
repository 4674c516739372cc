package main

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/docrank/internal/archive"
	"github.com/Adithya-Monish-Kumar-K/docrank/internal/report"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/config"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/kafka"
	"github.com/Adithya-Monish-Kumar-K/docrank/pkg/postgres"
	pkgredis "github.com/Adithya-Monish-Kumar-K/docrank/pkg/redis"
)

// backends holds the optional services a run talks to. A nil field means
// the backend is disabled or was unreachable at startup.
type backends struct {
	redis    *pkgredis.Client
	postgres *postgres.Client
	producer *kafka.Producer
	archive  *archive.Store
	checker  *health.Checker
}

// openBackends connects every enabled backend. Any that cannot be reached
// is logged and left disabled; the run continues without it. The ones that
// connected are then probed once and registered for the ready endpoint.
func openBackends(ctx context.Context, cfg *config.Config) *backends {
	b := &backends{checker: health.NewChecker()}

	if cfg.Redis.Enabled {
		client, err := pkgredis.NewClient(ctx, cfg.Redis)
		if err != nil {
			slog.Warn("result cache disabled", "addr", cfg.Redis.Addr, "error", err)
		} else {
			b.redis = client
			b.checker.Register("redis", health.PingCheck(client.Ping))
		}
	}
	if cfg.Postgres.Enabled {
		client, err := postgres.New(ctx, cfg.Postgres)
		if err != nil {
			slog.Warn("postgres sink disabled", "host", cfg.Postgres.Host, "error", err)
		} else {
			b.postgres = client
			b.checker.Register("postgres", health.PingCheck(client.Ping))
		}
	}
	if cfg.Kafka.Enabled {
		producer := kafka.NewProducer(cfg.Kafka)
		if err := producer.Ping(ctx); err != nil {
			slog.Warn("kafka sink disabled", "brokers", cfg.Kafka.Brokers, "error", err)
			producer.Close()
		} else {
			b.producer = producer
			b.checker.Register("kafka", health.PingCheck(producer.Ping))
		}
	}
	if cfg.Archive.Enabled {
		store, err := archive.Open(cfg.Archive.Path)
		if err != nil {
			slog.Warn("report archive disabled", "path", cfg.Archive.Path, "error", err)
		} else {
			b.archive = store
			b.checker.Register("archive", health.PingCheck(store.Ping))
		}
	}

	b.checker.Preflight(ctx)
	return b
}

// sinks returns the secondary report sinks for every live backend.
func (b *backends) sinks() []report.Sink {
	var sinks []report.Sink
	if b.postgres != nil {
		sinks = append(sinks, report.NewPostgresSink(b.postgres))
	}
	if b.producer != nil {
		sinks = append(sinks, report.NewKafkaSink(b.producer))
	}
	if b.archive != nil {
		sinks = append(sinks, archive.NewSink(b.archive))
	}
	return sinks
}

func (b *backends) Close() {
	if b.redis != nil {
		b.redis.Close()
	}
	if b.postgres != nil {
		b.postgres.Close()
	}
	if b.producer != nil {
		if err := b.producer.Close(); err != nil {
			slog.Error("closing kafka producer", "error", err)
		}
	}
	if b.archive != nil {
		b.archive.Close()
	}
}
