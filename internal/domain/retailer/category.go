package retailer

import "fmt"

// Category is the closed set of retailer categories.
type Category string

// Category constants.
const (
	Grocery     Category = "GROCERY"
	Medicine    Category = "MEDICINE"
	Electronics Category = "ELECTRONICS"
	Clothing    Category = "CLOTHING"
	Other       Category = "OTHER"
)

// Categories lists every valid category in declaration order.
func Categories() []Category {
	return []Category{Grocery, Medicine, Electronics, Clothing, Other}
}

// IsValid checks if the category is one of the supported values.
func (c Category) IsValid() bool {
	switch c {
	case Grocery, Medicine, Electronics, Clothing, Other:
		return true
	}
	return false
}

// ParseCategory converts a token into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}
