package services

import (
	"net/url"
	"strconv"
)

// ResizeAvatar rewrites a gravatar-style URL to request a square image of size pixels.
//
// Existing query parameters are dropped. Unparseable URLs and non-positive sizes are returned unchanged.
func ResizeAvatar(raw string, size int) string {
	u, ok := parseImageURL(raw, size)
	if !ok {
		return raw
	}
	q := url.Values{}
	q.Set("s", strconv.Itoa(size))
	q.Set("d", "mp")
	u.RawQuery = q.Encode()
	return u.String()
}

// ResizeIcon requests a site icon of size by size pixels, keeping other query parameters.
func ResizeIcon(raw string, size int) string {
	u, ok := parseImageURL(raw, size)
	if !ok {
		return raw
	}
	q := u.Query()
	q.Set("w", strconv.Itoa(size))
	q.Set("h", strconv.Itoa(size))
	u.RawQuery = q.Encode()
	return u.String()
}

func parseImageURL(raw string, size int) (*url.URL, bool) {
	if raw == "" || size <= 0 {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, false
	}
	return u, true
}
