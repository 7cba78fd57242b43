// Package qrcode renders the check-in codes printed on participant tickets.
package qrcode

import (
	"errors"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"
)

// DefaultSize is the edge length in pixels of a rendered code.
const DefaultSize = 256

// ErrEmptyContent is returned when there is nothing to encode.
var ErrEmptyContent = errors.New("qr code content cannot be empty")

// CheckInURL returns the public URL a scanned ticket opens.
// PRE: baseURL is an absolute URL without a trailing path, code is non-empty
// POST: Returns baseURL + "/checkin/" + escaped code
func CheckInURL(baseURL, code string) string {
	return strings.TrimRight(baseURL, "/") + "/checkin/" + url.PathEscape(code)
}

// PNG encodes content as a QR code image.
// PRE: size > 0, otherwise DefaultSize is used
// POST: Returns PNG bytes of a size x size image at medium error correction
func PNG(content string, size int) ([]byte, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if size <= 0 {
		size = DefaultSize
	}
	return qrcode.Encode(content, qrcode.Medium, size)
}
