package httpapi

import (
	"context"
	"strings"

	"github.com/riskibarqy/last-man-standing/internal/usecase"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	apiTracer = otel.Tracer("last-man-standing/internal/interfaces/httpapi")
	noopSpan  = trace.SpanFromContext(context.Background())
)

// startSpan opens a handler span under the otelhttp request span. Requests the
// trace filter skipped, such as /healthz, carry no parent and get a no-op span.
func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if !trace.SpanFromContext(ctx).SpanContext().IsValid() || !shouldCreateHTTPAPISpan(name) {
		return ctx, noopSpan
	}
	var opts []trace.SpanStartOption
	if session, ok := ctx.Value(sessionContextKey).(usecase.Session); ok {
		opts = append(opts, trace.WithAttributes(sessionAttributes(session)...))
	}
	return apiTracer.Start(ctx, name, opts...)
}

func shouldCreateHTTPAPISpan(name string) bool {
	return strings.HasPrefix(name, "httpapi.Handler.")
}

func sessionAttributes(s usecase.Session) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.Bool("lms.admin", s.IsAdmin)}
	if viewer := s.Viewer(); viewer != "" {
		attrs = append(attrs, attribute.String("lms.viewer_id", viewer))
	}
	if round := s.EffectiveRoundOverride(); round > 0 {
		attrs = append(attrs, attribute.Int("lms.round_override", round))
	}
	if s.ForceReveal() {
		attrs = append(attrs, attribute.Bool("lms.simulate_reveal", true))
	}
	return attrs
}
