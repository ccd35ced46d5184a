package chi

import (
	"encoding/json"
	"errors"
	"net/http"

	gochi "github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/retailerdir/internal/domain"
	logpkg "github.com/kailas-cloud/retailerdir/internal/logger"
	healthuc "github.com/kailas-cloud/retailerdir/internal/usecase/health"
	retaileruc "github.com/kailas-cloud/retailerdir/internal/usecase/retailer"
	"github.com/kailas-cloud/retailerdir/internal/version"
)

const maxBodyBytes = 10 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the retailer directory HTTP API.
type Server struct {
	retailers     *retaileruc.Service
	health        *healthuc.Service
	logger        *zap.Logger
	maxPageSize   int
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server. maxPageSize bounds the limit query parameter.
func NewServer(
	retailers *retaileruc.Service,
	health *healthuc.Service,
	logger *zap.Logger,
	maxPageSize int,
) *Server {
	if maxPageSize <= 0 {
		maxPageSize = 100
	}
	s := &Server{
		retailers:   retailers,
		health:      health,
		logger:      logger,
		maxPageSize: maxPageSize,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrValidation, http.StatusBadRequest, CodeValidationFailed,
			"Invalid input data."),
		sentinelHandler(domain.ErrInvalidFilterCombination, http.StatusBadRequest, CodeInvalidFilterCombination,
			"Invalid filter combination."),
		sentinelHandler(domain.ErrInvalidCategory, http.StatusBadRequest, CodeInvalidCategory,
			"Invalid category."),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, CodeNotFound,
			"No retailer found with that ID"),
		sentinelHandler(domain.ErrMissingContactInfo, http.StatusBadRequest, CodeMissingContactInfo,
			"Retailer does not have a phone number"),
		sentinelHandler(domain.ErrAlreadyExists, http.StatusConflict, CodeAlreadyExists,
			"A retailer with that name already exists."),
		sentinelHandler(domain.ErrStoreUnavailable, http.StatusServiceUnavailable, CodeStoreUnavailable,
			"Service temporarily unavailable."),
	}
	return s
}

// Routes registers the API on r. auth guards the write endpoints.
func (s *Server) Routes(r gochi.Router, auth func(http.Handler) http.Handler) {
	if auth == nil {
		auth = func(next http.Handler) http.Handler { return next }
	}
	r.NotFound(s.RouteNotFound)
	r.MethodNotAllowed(s.MethodNotAllowed)

	r.Get("/", s.HealthCheck)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/retailers", func(r gochi.Router) {
		r.Get("/", s.ListRetailers)
		r.With(auth).Post("/", s.CreateRetailer)
		r.Get("/{id}", s.GetRetailer)
		r.Get("/{id}/whatsapp", s.GetWhatsappLink)
	})
}

// ListRetailers handles GET /retailers.
func (s *Server) ListRetailers(w http.ResponseWriter, r *http.Request) {
	raw, err := bindSearchParams(r, s.maxPageSize)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	spec, err := s.retailers.NewSpec(raw)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	env, err := s.retailers.Search(r.Context(), spec)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, envelopeToResponse(&env))
}

// CreateRetailer handles POST /retailers.
func (s *Server) CreateRetailer(w http.ResponseWriter, r *http.Request) {
	var req CreateRetailerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, CodeBadRequest, "Invalid request body: "+err.Error(), nil)
		return
	}

	if err := validateCreate(&req); err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ret, err := s.retailers.Create(r.Context(), retaileruc.CreateInput{
		Name:        req.Name,
		Category:    req.Category,
		PhoneNumber: req.PhoneNumber,
		Address:     req.Address,
		Lat:         *req.Latitude,
		Lng:         *req.Longitude,
	})
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	sub, _ := SubjectFromContext(r.Context())
	logpkg.FromContext(r.Context()).Info("retailer registered",
		zap.String("retailer_id", ret.ID()),
		zap.String("created_by", sub),
	)

	w.Header().Set("Location", "/retailers/"+ret.ID())
	writeJSON(w, http.StatusCreated, RetailerResponse{
		Status: statusSuccess,
		Data:   RetailerData{Retailer: retailerToResponse(&ret)},
	})
}

// GetRetailer handles GET /retailers/{id}.
func (s *Server) GetRetailer(w http.ResponseWriter, r *http.Request) {
	id, err := bindRetailerID(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	ret, err := s.retailers.GetByID(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, RetailerResponse{
		Status: statusSuccess,
		Data:   RetailerData{Retailer: retailerToResponse(&ret)},
	})
}

// GetWhatsappLink handles GET /retailers/{id}/whatsapp.
func (s *Server) GetWhatsappLink(w http.ResponseWriter, r *http.Request) {
	id, err := bindRetailerID(r)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	link, err := s.retailers.MessagingLink(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LinkResponse{Link: link})
}

// HealthCheck handles GET / and GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// RouteNotFound answers unknown routes with a JSON 404.
func (s *Server) RouteNotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusNotFound, CodeRouteNotFound,
		"Can't find "+r.URL.RequestURI()+" on this server!", nil)
}

// MethodNotAllowed answers known routes hit with the wrong method.
func (s *Server) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, CodeMethodNotAllowed,
		r.Method+" is not allowed on "+r.URL.Path, nil)
}

func validateCreate(req *CreateRetailerRequest) error {
	switch {
	case req.Latitude == nil:
		return domain.NewFieldError(domain.ErrValidation, "latitude", "Required")
	case req.Longitude == nil:
		return domain.NewFieldError(domain.ErrValidation, "longitude", "Required")
	case *req.Latitude < -90 || *req.Latitude > 90:
		return domain.NewFieldError(domain.ErrValidation, "latitude", "must be between -90 and 90")
	case *req.Longitude < -180 || *req.Longitude > 180:
		return domain.NewFieldError(domain.ErrValidation, "longitude", "must be between -180 and 180")
	}
	return nil
}

func urlParam(r *http.Request, key string) string {
	return gochi.URLParam(r, key)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string, details []ErrorDetail) {
	st := statusFail
	if status >= http.StatusInternalServerError {
		st = statusError
	}
	writeJSON(w, status, ErrorResponse{
		Status:  st,
		Code:    code,
		Message: message,
		Details: details,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// A FieldError of that kind contributes its field and message as details.
func sentinelHandler(sentinel error, status int, code ErrorCode, msg string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		var details []ErrorDetail
		var fe *domain.FieldError
		if errors.As(err, &fe) {
			details = []ErrorDetail{{Field: fe.Field, Message: fe.Message}}
		}
		writeError(w, status, code, msg, details)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logpkg.FromContextOr(r.Context(), s.logger)
	for _, h := range s.errorHandlers {
		if h(w, err) {
			if errors.Is(err, domain.ErrStoreUnavailable) {
				log.Error("store unavailable", zap.Error(err))
			} else {
				log.Debug("request rejected", zap.Error(err))
			}
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, CodeInternalError, "Something went very wrong!", nil)
}
