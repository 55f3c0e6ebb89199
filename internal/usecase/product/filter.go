package product

import (
	"strings"

	domain "backoffice/catalog/internal/domain/product"
)

// Filter returns the products whose code or name contains keyword, ignoring case.
// Only the empty keyword returns all unchanged; whitespace is matched literally.
func Filter(all []domain.Product, keyword string) []domain.Product {
	if keyword == "" {
		return all
	}
	needle := strings.ToLower(keyword)
	out := make([]domain.Product, 0, len(all))
	for _, p := range all {
		if strings.Contains(strings.ToLower(p.ProductCode), needle) ||
			strings.Contains(strings.ToLower(p.Name), needle) {
			out = append(out, p)
		}
	}
	return out
}
