package health

import (
	"context"
	"time"
)

// Status is the aggregated service state reported by /health.
type Status string

const (
	// Healthy means every probe passed.
	Healthy Status = "ok"
	// Degraded means the database answers but the search index does not.
	// Lookups still work; searches may fail.
	Degraded Status = "degraded"
	// Unhealthy means the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult is the outcome of one probe.
type CheckResult string

// Probe outcomes.
const (
	CheckOK    CheckResult = "ok"
	CheckError CheckResult = "error"
)

// Probe names as they appear in Report.Checks.
const (
	CheckDatabase    = "database"
	CheckSearchIndex = "search_index"
)

const defaultProbeTimeout = 2 * time.Second

// Report aggregates probe results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service probes the storage backend.
type Service struct {
	db           DBPinger
	index        IndexChecker
	probeTimeout time.Duration
}

// New creates a Service. index is nil for backends without a search index.
func New(db DBPinger, index IndexChecker) *Service {
	return &Service{db: db, index: index, probeTimeout: defaultProbeTimeout}
}

// WithProbeTimeout bounds each probe.
func (s *Service) WithProbeTimeout(d time.Duration) *Service {
	if d > 0 {
		s.probeTimeout = d
	}
	return s
}

// Check pings the database, then the search index. The index is not probed
// while the database is down.
func (s *Service) Check(ctx context.Context) Report {
	r := Report{Status: Healthy, Checks: make(map[string]CheckResult, 2)}

	if !s.probe(ctx, r.Checks, CheckDatabase, s.db.Ping) {
		r.Status = Unhealthy
		return r
	}
	if s.index != nil && !s.probe(ctx, r.Checks, CheckSearchIndex, s.index.IndexReady) {
		r.Status = Degraded
	}
	return r
}

func (s *Service) probe(
	ctx context.Context, checks map[string]CheckResult, name string, fn func(context.Context) error,
) bool {
	ctx, cancel := context.WithTimeout(ctx, s.probeTimeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		checks[name] = CheckError
		return false
	}
	checks[name] = CheckOK
	return true
}
