package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	gochi "github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/result"
	"github.com/kailas-cloud/retailerdir/internal/repository/memory"
	healthuc "github.com/kailas-cloud/retailerdir/internal/usecase/health"
	retaileruc "github.com/kailas-cloud/retailerdir/internal/usecase/retailer"
)

const testSecret = "test-secret"

var testNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

// --- Mocks ---

type mockPinger struct{ err error }

func (m *mockPinger) Ping(context.Context) error { return m.err }

var errStoreDown = errors.New("connection refused")

type failingRepo struct{}

func (failingRepo) Create(context.Context, domret.Retailer) error { return errStoreDown }
func (failingRepo) Get(context.Context, string) (domret.Retailer, error) {
	return domret.Retailer{}, errStoreDown
}
func (failingRepo) CountExact(context.Context, filter.Predicate) (int, error) { return 0, errStoreDown }
func (failingRepo) PageExact(context.Context, filter.Predicate, int, int) ([]domret.Retailer, error) {
	return nil, errStoreDown
}
func (failingRepo) CountByProximity(context.Context, geo.Point, *float64, filter.Predicate) (int, error) {
	return 0, errStoreDown
}
func (failingRepo) SearchByProximity(
	context.Context, geo.Point, *float64, filter.Predicate, int, int,
) ([]result.Item, error) {
	return nil, errStoreDown
}

// --- Harness ---

type testAPI struct {
	handler http.Handler
	repo    *memory.Repo
}

func newTestAPI(t *testing.T, repo retaileruc.Repository, db healthuc.DBPinger) http.Handler {
	t.Helper()
	n := 0
	svc := retaileruc.New(repo, 20).
		WithIDGenerator(func() string {
			n++
			return fmt.Sprintf("00000000-0000-4000-8000-%012d", n)
		}).
		WithClock(func() time.Time { return testNow.Add(time.Duration(n) * time.Minute) })
	srv := NewServer(svc, healthuc.New(db, nil), zap.NewNop(), 50)

	r := gochi.NewRouter()
	r.Use(JSONRecoverer(zap.NewNop()))
	srv.Routes(r, JWTAuthMiddleware(testSecret, ""))
	return r
}

func newMemoryAPI(t *testing.T) *testAPI {
	t.Helper()
	repo := memory.New()
	return &testAPI{handler: newTestAPI(t, repo, repo), repo: repo}
}

// lngEast returns the longitude km kilometers east of (0,0) along the equator.
func lngEast(km float64) float64 {
	return km * 1000 / geo.EarthRadiusMeters * 180 / math.Pi
}

// seedScenario registers C, B, A through the API so A is the newest.
func (a *testAPI) seedScenario(t *testing.T) map[string]string {
	t.Helper()
	ids := make(map[string]string)
	for _, s := range []struct {
		label, name, cat string
		km               float64
	}{
		{"C", "Blue Grocer", "GROCERY", 50},
		{"B", "Green Pharmacy", "MEDICINE", 8},
		{"A", "Green Grocer", "GROCERY", 2},
	} {
		rr := a.do(t, http.MethodPost, "/retailers", validToken(t), map[string]any{
			"name": s.name, "category": s.cat, "phoneNumber": "+15551234567",
			"address": "1 Main St", "latitude": 0.0, "longitude": lngEast(s.km),
		})
		if rr.Code != http.StatusCreated {
			t.Fatalf("seed %s: status %d: %s", s.label, rr.Code, rr.Body.String())
		}
		var resp RetailerResponse
		decode(t, rr, &resp)
		ids[s.label] = resp.Data.Retailer.ID
	}
	return ids
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return doRequest(t, a.handler, method, path, token, body)
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		var buf bytes.Buffer
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
		req = httptest.NewRequest(method, path, &buf)
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, http.NoBody)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func signToken(t *testing.T, secret string, claims jwt.RegisteredClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func validToken(t *testing.T) string {
	t.Helper()
	return signToken(t, testSecret, jwt.RegisteredClaims{
		Subject:   "merchant-admin",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	})
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	decode(t, rr, &e)
	return e
}
