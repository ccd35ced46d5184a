package retailer

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/kailas-cloud/retailerdir/internal/domain"
	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/result"
	"github.com/kailas-cloud/retailerdir/internal/metrics"
)

const tracerName = "github.com/kailas-cloud/retailerdir/internal/usecase/retailer"

// InstrumentedRepository wraps a Repository with a span and store metrics per call.
// Not-found and duplicate outcomes are recorded as their own status, not as errors.
type InstrumentedRepository struct {
	inner   Repository
	backend string
	tracer  trace.Tracer
}

// NewInstrumentedRepository decorates inner. backend labels metrics and spans
// (redis, postgres, memory).
func NewInstrumentedRepository(inner Repository, backend string) *InstrumentedRepository {
	return &InstrumentedRepository{
		inner:   inner,
		backend: backend,
		tracer:  otel.Tracer(tracerName),
	}
}

// Create delegates to the inner repository.
func (r *InstrumentedRepository) Create(ctx context.Context, ret domret.Retailer) (err error) {
	ctx, done := r.observe(ctx, "create")
	defer func() { done(err) }()
	return r.inner.Create(ctx, ret)
}

// Get delegates to the inner repository.
func (r *InstrumentedRepository) Get(ctx context.Context, id string) (_ domret.Retailer, err error) {
	ctx, done := r.observe(ctx, "get")
	defer func() { done(err) }()
	return r.inner.Get(ctx, id)
}

// CountExact delegates to the inner repository.
func (r *InstrumentedRepository) CountExact(ctx context.Context, p filter.Predicate) (_ int, err error) {
	ctx, done := r.observe(ctx, "count_exact")
	defer func() { done(err) }()
	return r.inner.CountExact(ctx, p)
}

// PageExact delegates to the inner repository.
func (r *InstrumentedRepository) PageExact(
	ctx context.Context, p filter.Predicate, offset, limit int,
) (_ []domret.Retailer, err error) {
	ctx, done := r.observe(ctx, "page_exact",
		attribute.Int("offset", offset), attribute.Int("limit", limit))
	defer func() { done(err) }()
	return r.inner.PageExact(ctx, p, offset, limit)
}

// CountByProximity delegates to the inner repository.
func (r *InstrumentedRepository) CountByProximity(
	ctx context.Context, center geo.Point, radiusMeters *float64, p filter.Predicate,
) (_ int, err error) {
	ctx, done := r.observe(ctx, "count_proximity")
	defer func() { done(err) }()
	return r.inner.CountByProximity(ctx, center, radiusMeters, p)
}

// SearchByProximity delegates to the inner repository.
func (r *InstrumentedRepository) SearchByProximity(
	ctx context.Context, center geo.Point, radiusMeters *float64, p filter.Predicate, offset, limit int,
) (_ []result.Item, err error) {
	ctx, done := r.observe(ctx, "search_proximity",
		attribute.Int("offset", offset), attribute.Int("limit", limit))
	defer func() { done(err) }()
	return r.inner.SearchByProximity(ctx, center, radiusMeters, p, offset, limit)
}

func (r *InstrumentedRepository) observe(
	ctx context.Context, op string, attrs ...attribute.KeyValue,
) (context.Context, func(error)) {
	ctx, span := r.tracer.Start(ctx, "retailer.store."+op, trace.WithSpanKind(trace.SpanKindClient))
	span.SetAttributes(
		attribute.String("db.system", r.backend),
		attribute.String("db.operation", op),
	)
	span.SetAttributes(attrs...)
	start := time.Now()

	return ctx, func(err error) {
		defer span.End()

		status := callStatus(err)
		metrics.StoreCallsTotal.WithLabelValues(r.backend, op, status).Inc()
		metrics.StoreCallDuration.WithLabelValues(r.backend, op).Observe(time.Since(start).Seconds())

		if status == "error" {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return
		}
		span.SetAttributes(attribute.String("outcome", status))
		span.SetStatus(codes.Ok, "")
	}
}

func callStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrAlreadyExists):
		return "conflict"
	default:
		return "error"
	}
}
