package catalog

import (
	"strings"

	"github.com/noah-isme/backend-kco/internal/kco"
)

// Router builds localized storefront product URLs the way the
// storefront's own router would resolve them: the store code prefixes
// the path, the parent SKU identifies configurable products and the
// child SKU picks the variant.
type Router struct{}

// ProductURL returns the canonical path for product under storeCode.
// A recorded url_path wins; otherwise the path is derived from the
// product identifiers.
func (Router) ProductURL(product kco.ProductRef, storeCode string) string {
	var b strings.Builder
	if storeCode != "" {
		b.WriteString("/")
		b.WriteString(storeCode)
	}
	if path := strings.TrimSpace(product.URLPath); path != "" {
		if !strings.HasPrefix(path, "/") {
			b.WriteString("/")
		}
		b.WriteString(path)
		return b.String()
	}
	parent := product.ParentSKU
	if parent == "" {
		parent = product.SKU
	}
	for _, part := range []string{"p", parent, product.Slug, product.SKU} {
		if part == "" {
			continue
		}
		b.WriteString("/")
		b.WriteString(part)
	}
	return b.String()
}
