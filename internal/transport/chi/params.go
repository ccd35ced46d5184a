package chi

import (
	"fmt"
	"math"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/oapi-codegen/runtime"

	"github.com/kailas-cloud/retailerdir/internal/domain"
	"github.com/kailas-cloud/retailerdir/internal/domain/search/filter"
)

// bindSearchParams decodes GET /retailers query parameters and applies the
// schema rules. Cross-field rules are left to filter.NewSpec. Range checks are
// written so that NaN fails them.
func bindSearchParams(r *http.Request, maxLimit int) (filter.Raw, error) {
	q := nonEmpty(r.URL.Query())

	var raw filter.Raw
	binds := []struct {
		name string
		dest any
	}{
		{"search", &raw.Search},
		{"category", &raw.Category},
		{"lat", &raw.Lat},
		{"lng", &raw.Lng},
		{"radiusKm", &raw.RadiusKm},
		{"page", &raw.Page},
		{"limit", &raw.Limit},
	}
	for _, b := range binds {
		if err := runtime.BindQueryParameter("form", true, false, b.name, q, b.dest); err != nil {
			return filter.Raw{}, domain.NewFieldError(domain.ErrValidation, b.name,
				fmt.Sprintf("invalid format for parameter %s", b.name))
		}
	}

	if raw.Lat != nil && !(*raw.Lat >= -90 && *raw.Lat <= 90) {
		return filter.Raw{}, domain.NewFieldError(domain.ErrValidation, "lat", "must be between -90 and 90")
	}
	if raw.Lng != nil && !(*raw.Lng >= -180 && *raw.Lng <= 180) {
		return filter.Raw{}, domain.NewFieldError(domain.ErrValidation, "lng", "must be between -180 and 180")
	}
	if raw.RadiusKm != nil && !(*raw.RadiusKm > 0 && !math.IsInf(*raw.RadiusKm, 1)) {
		return filter.Raw{}, domain.NewFieldError(domain.ErrValidation, "radiusKm", "must be a finite number greater than 0")
	}
	if raw.Page != nil && *raw.Page < 1 {
		return filter.Raw{}, domain.NewFieldError(domain.ErrValidation, "page", "must be a positive integer")
	}
	if raw.Limit != nil && (*raw.Limit < 1 || *raw.Limit > maxLimit) {
		return filter.Raw{}, domain.NewFieldError(domain.ErrValidation, "limit",
			fmt.Sprintf("must be between 1 and %d", maxLimit))
	}
	return raw, nil
}

// bindRetailerID decodes the {id} path segment and requires a canonical UUID.
func bindRetailerID(r *http.Request) (string, error) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", urlParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Required: true})
	if err != nil {
		return "", domain.NewFieldError(domain.ErrValidation, "id", "invalid format for parameter id")
	}
	if len(id) != 36 {
		return "", domain.NewFieldError(domain.ErrValidation, "id", "Invalid UUID format")
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", domain.NewFieldError(domain.ErrValidation, "id", "Invalid UUID format")
	}
	return id, nil
}

// nonEmpty drops parameters whose values are all empty, so "?lat=" reads as absent.
func nonEmpty(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		for _, v := range vs {
			if v != "" {
				out[k] = append(out[k], v)
			}
		}
	}
	return out
}
