package index

import (
	"fmt"
	"strings"

	"github.com/eshop-cloud/recall/internal/domain"
)

// maxDescriptionLen bounds how much of the description is embedded.
const maxDescriptionLen = 200

// BuildSearchableText derives the canonical embedding input for a
// product. It is pure and deterministic: identical product data always
// yields identical text, which is what makes cache hits and rebuilds
// reproducible.
func BuildSearchableText(p domain.Product) string {
	parts := make([]string, 0, 5)

	if p.Name != "" {
		parts = append(parts, p.Name)
	}
	if p.Brand != "" {
		parts = append(parts, "Brand: "+p.Brand)
	}
	if p.Category != "" {
		parts = append(parts, "Category: "+p.Category)
	}
	if p.Description != "" {
		parts = append(parts, truncate(p.Description, maxDescriptionLen))
	}
	parts = append(parts, fmt.Sprintf("Price: %.2f", p.Price))

	return strings.Join(parts, ". ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
