package tracing

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestSpanTree(t *testing.T) {
	t.Parallel()

	traceID := NewTraceID()
	ctx, root := StartSpan(context.Background(), "job", traceID)
	_, mapSpan := StartChildSpan(ctx, "map-phase")
	mapSpan.SetAttr("fragments", 12)
	mapSpan.End()
	_, reduceSpan := StartChildSpan(ctx, "reduce-phase")
	reduceSpan.End()
	root.End()

	if len(root.Children) != 2 {
		t.Fatalf("root children = %d, want 2", len(root.Children))
	}
	if mapSpan.TraceID != traceID {
		t.Errorf("child trace id = %q, want %q", mapSpan.TraceID, traceID)
	}

	var buf bytes.Buffer
	root.Log(slog.New(slog.NewTextHandler(&buf, nil)))
	out := buf.String()
	for _, want := range []string{"span=job", "span=map-phase", "fragments=12", "depth=1"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestChildWithoutParent(t *testing.T) {
	t.Parallel()

	_, span := StartChildSpan(context.Background(), "orphan")
	span.End()
	if span.TraceID != "" {
		t.Errorf("orphan trace id = %q, want empty", span.TraceID)
	}
}
