package retailer

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kailas-cloud/retailerdir/internal/domain"
	"github.com/kailas-cloud/retailerdir/internal/domain/geo"
)

// MaxNameLength is the maximum retailer name length in characters.
const MaxNameLength = 120

var phoneRegex = regexp.MustCompile(`^\+[1-9]\d{1,14}$`)

// Retailer is the retailer aggregate (immutable value object).
type Retailer struct {
	id        string
	name      string
	category  Category
	phone     string
	address   string
	position  geo.Point
	createdAt time.Time
	updatedAt time.Time
}

// New validates and creates a Retailer. createdAt and updatedAt are both set to now.
func New(
	id, name string, category Category, phone, address string,
	position geo.Point, now time.Time,
) (Retailer, error) {
	if id == "" {
		return Retailer{}, invalid("id", "retailer ID is required")
	}
	if strings.TrimSpace(name) == "" {
		return Retailer{}, invalid("name", "name is required")
	}
	if strings.TrimSpace(name) != name {
		return Retailer{}, invalid("name", "name must not start or end with whitespace")
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return Retailer{}, invalid("name", fmt.Sprintf("name too long (max %d)", MaxNameLength))
	}
	if !category.IsValid() {
		return Retailer{}, domain.NewFieldError(domain.ErrInvalidCategory, "category",
			fmt.Sprintf("unknown category %q", category))
	}
	if !ValidPhone(phone) {
		return Retailer{}, invalid("phoneNumber", "phone number must be E.164 formatted")
	}
	if strings.TrimSpace(address) == "" {
		return Retailer{}, invalid("address", "address is required")
	}
	if !geo.ValidateCoordinates(position.Lat(), position.Lng()) {
		return Retailer{}, invalid("location", "position out of range")
	}

	return Retailer{
		id:        id,
		name:      name,
		category:  category,
		phone:     phone,
		address:   address,
		position:  position,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// Reconstruct creates a Retailer without validation (storage hydration).
func Reconstruct(
	id, name string, category Category, phone, address string,
	position geo.Point, createdAt, updatedAt time.Time,
) Retailer {
	return Retailer{
		id: id, name: name, category: category, phone: phone, address: address,
		position: position, createdAt: createdAt, updatedAt: updatedAt,
	}
}

func invalid(field, msg string) error {
	return domain.NewFieldError(domain.ErrValidation, field, msg)
}

// ValidPhone reports whether s is an E.164 phone number.
func ValidPhone(s string) bool {
	return phoneRegex.MatchString(s)
}

// ID returns the retailer identifier.
func (r *Retailer) ID() string { return r.id }

// Name returns the retailer name.
func (r *Retailer) Name() string { return r.name }

// Category returns the retailer category.
func (r *Retailer) Category() Category { return r.category }

// Phone returns the E.164 phone number.
func (r *Retailer) Phone() string { return r.phone }

// Address returns the street address.
func (r *Retailer) Address() string { return r.address }

// Position returns the stored geographic point.
func (r *Retailer) Position() geo.Point { return r.position }

// CreatedAt returns the creation timestamp.
func (r *Retailer) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last update timestamp.
func (r *Retailer) UpdatedAt() time.Time { return r.updatedAt }
