package retailer

import (
	"context"
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/result"
	"github.com/kailas-cloud/retailerdir/internal/repository/memory"
)

// --- Mocks ---

type mockRepo struct {
	createErr error
	getErr    error
	countErr  error
	pageErr   error
	block     bool

	countCalls int
	pageCalls  int
}

func (m *mockRepo) wait(ctx context.Context) error {
	if m.block {
		<-ctx.Done()
		return ctx.Err()
	}
	return nil
}

func (m *mockRepo) Create(_ context.Context, _ domret.Retailer) error { return m.createErr }

func (m *mockRepo) Get(_ context.Context, _ string) (domret.Retailer, error) {
	return domret.Retailer{}, m.getErr
}

func (m *mockRepo) CountExact(ctx context.Context, _ filter.Predicate) (int, error) {
	m.countCalls++
	if err := m.wait(ctx); err != nil {
		return 0, err
	}
	return 0, m.countErr
}

func (m *mockRepo) PageExact(ctx context.Context, _ filter.Predicate, _, _ int) ([]domret.Retailer, error) {
	m.pageCalls++
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return nil, m.pageErr
}

func (m *mockRepo) CountByProximity(ctx context.Context, _ geo.Point, _ *float64, _ filter.Predicate) (int, error) {
	m.countCalls++
	if err := m.wait(ctx); err != nil {
		return 0, err
	}
	return 0, m.countErr
}

func (m *mockRepo) SearchByProximity(
	ctx context.Context, _ geo.Point, _ *float64, _ filter.Predicate, _, _ int,
) ([]result.Item, error) {
	m.pageCalls++
	if err := m.wait(ctx); err != nil {
		return nil, err
	}
	return nil, m.pageErr
}

// --- Fixtures ---

var base = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

// lngEast returns the longitude km kilometers east of (0,0) along the equator.
func lngEast(km float64) float64 {
	return km * 1000 / geo.EarthRadiusMeters * 180 / math.Pi
}

type fixture struct {
	svc  *Service
	repo *memory.Repo
	ids  map[string]string
}

// newFixture registers C, B, A in that order through the service, so A is the newest.
//
//	A "Green Grocer"   GROCERY   2km
//	B "Green Pharmacy" MEDICINE  8km
//	C "Blue Grocer"    GROCERY  50km
func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.New()
	f := &fixture{repo: repo, ids: make(map[string]string)}

	tick := 0
	f.svc = New(repo, 20).
		WithClock(func() time.Time {
			return base.Add(time.Duration(tick) * time.Minute)
		}).
		WithIDGenerator(func() string {
			tick++
			return fmt.Sprintf("id-%02d", tick)
		})

	create := func(label, name, cat string, km float64) {
		ret, err := f.svc.Create(context.Background(), CreateInput{
			Name:        name,
			Category:    cat,
			PhoneNumber: "+15551234567",
			Address:     "1 Main St",
			Lat:         0,
			Lng:         lngEast(km),
		})
		if err != nil {
			t.Fatalf("create %s: %v", label, err)
		}
		f.ids[label] = ret.ID()
	}
	create("C", "Blue Grocer", "GROCERY", 50)
	create("B", "Green Pharmacy", "MEDICINE", 8)
	create("A", "Green Grocer", "GROCERY", 2)
	return f
}

func ptr[T any](v T) *T { return &v }

func itemIDs(env result.Envelope) []string {
	out := make([]string, 0, len(env.Items()))
	for _, it := range env.Items() {
		out = append(out, it.Retailer().ID())
	}
	return out
}
