package chi

import (
	"math"
	"time"

	domret "github.com/kailas-cloud/retailerdir/internal/domain/retailer"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/result"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	CodeBadRequest               ErrorCode = "bad_request"
	CodeValidationFailed         ErrorCode = "validation_failed"
	CodeInvalidFilterCombination ErrorCode = "invalid_filter_combination"
	CodeInvalidCategory          ErrorCode = "invalid_category"
	CodeUnauthorized             ErrorCode = "unauthorized"
	CodeNotFound                 ErrorCode = "not_found"
	CodeRouteNotFound            ErrorCode = "route_not_found"
	CodeMethodNotAllowed         ErrorCode = "method_not_allowed"
	CodeMissingContactInfo       ErrorCode = "missing_contact_info"
	CodeAlreadyExists            ErrorCode = "already_exists"
	CodeStoreUnavailable         ErrorCode = "store_unavailable"
	CodeInternalError            ErrorCode = "internal_error"
)

// Response status values.
const (
	statusSuccess = "success"
	statusFail    = "fail"
	statusError   = "error"
)

// ErrorDetail points at one offending input field.
type ErrorDetail struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Status  string        `json:"status"`
	Code    ErrorCode     `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details"`
}

// Location is a GeoJSON point, coordinates in [lng, lat] order.
type Location struct {
	Type        string     `json:"type"`
	Coordinates [2]float64 `json:"coordinates"`
}

// Retailer is the public projection of a retailer.
type Retailer struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	PhoneNumber string    `json:"phoneNumber"`
	Address     string    `json:"address"`
	Location    *Location `json:"location,omitempty"`
	DistanceKm  *float64  `json:"distanceKm,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Pagination mirrors result.Pagination.
type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// RetailerListData wraps a page of retailers.
type RetailerListData struct {
	Retailers []Retailer `json:"retailers"`
}

// RetailerListResponse is the body of GET /retailers.
type RetailerListResponse struct {
	Status     string           `json:"status"`
	Pagination Pagination       `json:"pagination"`
	Data       RetailerListData `json:"data"`
}

// RetailerData wraps a single retailer.
type RetailerData struct {
	Retailer Retailer `json:"retailer"`
}

// RetailerResponse is the body of GET /retailers/{id} and POST /retailers.
type RetailerResponse struct {
	Status string       `json:"status"`
	Data   RetailerData `json:"data"`
}

// LinkResponse is the body of GET /retailers/{id}/whatsapp.
type LinkResponse struct {
	Link string `json:"link"`
}

// CreateRetailerRequest is the body of POST /retailers.
type CreateRetailerRequest struct {
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	PhoneNumber string   `json:"phoneNumber"`
	Address     string   `json:"address"`
	Latitude    *float64 `json:"latitude"`
	Longitude   *float64 `json:"longitude"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

func retailerToResponse(r *domret.Retailer) Retailer {
	return Retailer{
		ID:          r.ID(),
		Name:        r.Name(),
		Category:    string(r.Category()),
		PhoneNumber: r.Phone(),
		Address:     r.Address(),
		Location:    &Location{Type: "Point", Coordinates: r.Position().Coordinates()},
		CreatedAt:   r.CreatedAt().UTC(),
		UpdatedAt:   r.UpdatedAt().UTC(),
	}
}

// itemToResponse projects a search hit. Proximity hits carry distanceKm
// instead of the stored location.
func itemToResponse(it *result.Item) Retailer {
	out := retailerToResponse(it.Retailer())
	if km, ok := it.DistanceKm(); ok {
		rounded := roundKm(km)
		out.DistanceKm = &rounded
		out.Location = nil
	}
	return out
}

func envelopeToResponse(env *result.Envelope) RetailerListResponse {
	items := env.Items()
	retailers := make([]Retailer, len(items))
	for i := range items {
		retailers[i] = itemToResponse(&items[i])
	}
	p := env.Pagination()
	return RetailerListResponse{
		Status:     statusSuccess,
		Pagination: Pagination{Page: p.Page, Limit: p.Limit, Total: p.Total, Pages: p.Pages},
		Data:       RetailerListData{Retailers: retailers},
	}
}

func roundKm(km float64) float64 {
	return math.Round(km*1000) / 1000
}
