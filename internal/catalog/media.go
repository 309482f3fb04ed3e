// Package catalog resolves product presentation data for the provider
// widget: thumbnail URLs served by the media proxy and canonical
// storefront product URLs.
package catalog

import (
	"fmt"
	"strings"
)

// Media resolves catalog image references against the media proxy.
type Media struct {
	BaseURL string
}

// ThumbnailURL builds the resized-thumbnail URL for an image
// reference. An empty reference resolves to "" so the provider widget
// renders its placeholder instead of a broken link.
func (m Media) ThumbnailURL(image string, width, height int) string {
	if strings.TrimSpace(image) == "" {
		return ""
	}
	base := strings.TrimRight(m.BaseURL, "/")
	if !strings.HasPrefix(image, "/") {
		image = "/" + image
	}
	return fmt.Sprintf("%s/img/%d/%d/resize%s", base, width, height, image)
}
