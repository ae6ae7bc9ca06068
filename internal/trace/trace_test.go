package trace

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewContextHasIDs(t *testing.T) {
	tc := New()

	if len(tc.TraceID) != 32 {
		t.Errorf("TraceID length = %d, want 32", len(tc.TraceID))
	}
	if len(tc.SpanID) != 16 {
		t.Errorf("SpanID length = %d, want 16", len(tc.SpanID))
	}
}

func TestNewChildInheritsTraceID(t *testing.T) {
	parent := New()
	child := NewChild(parent)

	if child.TraceID != parent.TraceID {
		t.Error("child should inherit trace ID")
	}
	if child.SpanID == parent.SpanID {
		t.Error("child should get a fresh span ID")
	}
	if child.ParentSpanID != parent.SpanID {
		t.Error("child parent span should be parent's span")
	}
}

func TestContextRoundTrip(t *testing.T) {
	tc := New()
	ctx := WithContext(context.Background(), tc)

	got, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected trace context")
	}
	if got.TraceID != tc.TraceID {
		t.Errorf("TraceID = %q, want %q", got.TraceID, tc.TraceID)
	}
}

func TestStartSpanWithoutParent(t *testing.T) {
	ctx, span := StartSpan(context.Background(), "cycle")
	defer span.End()

	if span.Ctx.TraceID == "" {
		t.Error("span should have a trace ID")
	}
	if _, ok := FromContext(ctx); !ok {
		t.Error("returned context should carry trace context")
	}
}

func TestSpanDuration(t *testing.T) {
	_, span := StartSpan(context.Background(), "capture")

	if span.Duration() != 0 {
		t.Error("duration should be zero before End")
	}
	span.End()
	if span.Duration() < 0 {
		t.Error("duration should be non-negative after End")
	}
}

func TestMiddlewarePropagatesHeader(t *testing.T) {
	var got Context
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	req := httptest.NewRequest("GET", "/api/status", nil)
	req.Header.Set(TraceIDKey, "abc123")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got.TraceID != "abc123" {
		t.Errorf("TraceID = %q, want %q", got.TraceID, "abc123")
	}
}

func TestMiddlewareCreatesTrace(t *testing.T) {
	var got Context
	handler := Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = FromContext(r.Context())
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest("GET", "/", nil))

	if got.TraceID == "" {
		t.Error("middleware should create a trace ID when none supplied")
	}
}
