// Package avatar maps usernames to generated avatar image URLs.
package avatar

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the DiceBear "personas" style endpoint.
const DefaultBaseURL = "https://api.dicebear.com/7.x/personas/svg"

// Generator is deterministic: the same username always yields the same URL.
type Generator interface {
	URL(username string) string
}

// DiceBear builds seed-based DiceBear URLs.
type DiceBear struct {
	BaseURL string
}

func NewDiceBear(baseURL string) *DiceBear {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &DiceBear{BaseURL: strings.TrimSuffix(baseURL, "?")}
}

func (d *DiceBear) URL(username string) string {
	return d.BaseURL + "?seed=" + url.QueryEscape(username)
}
