package product

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// UnknownOwner is recorded when no session identity is available at creation time.
const UnknownOwner = "unknown"

// Product captures a catalog record as held by the document store.
type Product struct {
	DocumentID  string    `json:"documentId,omitempty"`
	ProductCode string    `json:"productCode"`
	Name        string    `json:"name"`
	Price       float64   `json:"price"`
	Owner       string    `json:"owner"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Persisted reports whether the record carries a store-assigned document id.
func (p Product) Persisted() bool {
	return p.DocumentID != ""
}

// Changes is a partial edit. The product code has no update path.
type Changes struct {
	Name  *string  `json:"name"`
	Price *float64 `json:"price"`
}

// Empty reports whether the changes carry nothing to write.
func (c Changes) Empty() bool {
	return c.Name == nil && c.Price == nil
}

// Apply writes the changes onto p.
func (c Changes) Apply(p *Product) {
	if c.Name != nil {
		p.Name = *c.Name
	}
	if c.Price != nil {
		p.Price = *c.Price
	}
}

// Normalize trims the name and validates both fields.
func (c Changes) Normalize() (Changes, error) {
	verr := &ValidationError{}
	out := Changes{Price: c.Price}
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		if name == "" {
			verr.Add(FieldName.String(), "Product name is required")
		}
		out.Name = &name
	}
	if c.Price != nil && !validPrice(*c.Price) {
		verr.Add(FieldPrice, "Valid price is required")
	}
	if verr.HasErrors() {
		return Changes{}, verr
	}
	return out, nil
}

// Candidate is the raw create-form input prior to validation.
type Candidate struct {
	ProductCode string `json:"productCode"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	Owner       string `json:"owner"`
}

// Validate trims and parses the candidate into a product ready to persist.
func (c Candidate) Validate() (Product, error) {
	verr := &ValidationError{}
	code := strings.TrimSpace(c.ProductCode)
	name := strings.TrimSpace(c.Name)
	if code == "" {
		verr.Add(FieldProductCode.String(), "Product ID is required")
	}
	if name == "" {
		verr.Add(FieldName.String(), "Product name is required")
	}
	price, err := ParsePrice(c.Price)
	if err != nil {
		verr.Add(FieldPrice, "Valid price is required")
	}
	if verr.HasErrors() {
		return Product{}, verr
	}

	owner := strings.TrimSpace(c.Owner)
	if owner == "" {
		owner = UnknownOwner
	}
	return Product{
		ProductCode: code,
		Name:        name,
		Price:       price,
		Owner:       owner,
	}, nil
}

// ParsePrice parses form input into a finite, non-negative amount.
func ParsePrice(raw string) (float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, &ValidationError{Fields: map[string]string{FieldPrice: "Valid price is required"}}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || !validPrice(v) {
		return 0, &ValidationError{Fields: map[string]string{FieldPrice: "Valid price is required"}}
	}
	return v, nil
}

func validPrice(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
