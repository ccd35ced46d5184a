package retailer

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/retailerdir/internal/domain"
	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/result"
	"github.com/kailas-cloud/retailerdir/internal/metrics"
)

const (
	messagingBaseURL = "https://wa.me/"
	greeting         = "Hi"
)

// CreateInput carries the fields of a retailer registration.
type CreateInput struct {
	Name        string
	Category    string
	PhoneNumber string
	Address     string
	Lat         float64
	Lng         float64
}

// Service is the retailer query engine plus lookup and registration.
type Service struct {
	repo         Repository
	defaultLimit int
	timeout      time.Duration
	logger       *zap.Logger
	now          func() time.Time
	newID        func() string
}

// New creates a retailer service. defaultLimit is the page size used when a
// search does not specify one.
func New(repo Repository, defaultLimit int) *Service {
	if defaultLimit <= 0 {
		defaultLimit = filter.DefaultLimit
	}
	return &Service{
		repo:         repo,
		defaultLimit: defaultLimit,
		logger:       zap.NewNop(),
		now:          time.Now,
		newID:        uuid.NewString,
	}
}

// WithTimeout bounds every search. Zero disables the bound.
func (s *Service) WithTimeout(d time.Duration) *Service {
	if d >= 0 {
		s.timeout = d
	}
	return s
}

// WithLogger sets the service logger.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithClock overrides the timestamp source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// WithIDGenerator overrides the retailer ID source.
func (s *Service) WithIDGenerator(gen func() string) *Service {
	if gen != nil {
		s.newID = gen
	}
	return s
}

// NewSpec normalizes raw search inputs using the configured default page size.
func (s *Service) NewSpec(raw filter.Raw) (filter.Spec, error) {
	spec, err := filter.NewSpec(raw, s.defaultLimit)
	if err != nil {
		return filter.Spec{}, fmt.Errorf("search filters: %w", err)
	}
	return spec, nil
}

// Search runs the strategy selected by spec and builds the result envelope.
// Either both count and page succeed or the search fails as a whole.
func (s *Service) Search(ctx context.Context, spec filter.Spec) (result.Envelope, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	strategy, run := selectStrategy(&spec)
	start := time.Now()

	items, total, err := run(ctx, s.repo, &spec)
	if err != nil {
		s.logger.Error("Retailer search failed",
			zap.String("strategy", string(strategy)),
			zap.Duration("duration", time.Since(start)),
			zap.Error(err),
		)
		metrics.SearchesTotal.WithLabelValues(string(strategy), "error").Inc()
		return result.Envelope{}, unavailable("search "+string(strategy), err)
	}
	metrics.SearchesTotal.WithLabelValues(string(strategy), "ok").Inc()

	s.logger.Debug("Retailer search",
		zap.String("strategy", string(strategy)),
		zap.Int("total", total),
		zap.Int("returned", len(items)),
		zap.Duration("duration", time.Since(start)),
	)

	return result.NewEnvelope(items, result.NewPagination(spec.Page(), spec.Limit(), total)), nil
}

// GetByID returns a retailer or domain.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (domret.Retailer, error) {
	ret, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domret.Retailer{}, fmt.Errorf("retailer %s: %w", id, domain.ErrNotFound)
		}
		return domret.Retailer{}, unavailable("get retailer", err)
	}
	return ret, nil
}

// MessagingLink returns a chat deep link that opens a conversation with the retailer.
func (s *Service) MessagingLink(ctx context.Context, id string) (string, error) {
	ret, err := s.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return messagingLink(ret.Phone())
}

// Create validates and stores a new retailer with a generated ID.
func (s *Service) Create(ctx context.Context, in CreateInput) (domret.Retailer, error) {
	ret, err := domret.New(
		s.newID(), in.Name, domret.Category(in.Category),
		in.PhoneNumber, in.Address, geo.Reconstruct(in.Lng, in.Lat), s.now(),
	)
	if err != nil {
		return domret.Retailer{}, err
	}

	if err := s.repo.Create(ctx, ret); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return domret.Retailer{}, domain.NewFieldError(domain.ErrAlreadyExists, "name",
				fmt.Sprintf("a retailer named %q already exists", ret.Name()))
		}
		return domret.Retailer{}, unavailable("create retailer", err)
	}

	s.logger.Info("Retailer created",
		zap.String("id", ret.ID()),
		zap.String("category", string(ret.Category())),
	)
	return ret, nil
}

func messagingLink(phone string) (string, error) {
	if phone == "" {
		return "", fmt.Errorf("retailer has no phone number: %w", domain.ErrMissingContactInfo)
	}
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, phone)
	if digits == "" {
		return "", fmt.Errorf("phone number has no digits: %w", domain.ErrMissingContactInfo)
	}
	text := strings.ReplaceAll(url.QueryEscape(greeting), "+", "%20")
	return messagingBaseURL + digits + "?text=" + text, nil
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrStoreUnavailable, op, err)
}
