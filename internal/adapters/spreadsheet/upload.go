package spreadsheet

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// XLSXContentType is the MIME type of an Office Open XML workbook.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MaxUploadBytes caps the size of an uploaded workbook.
const MaxUploadBytes = 10 << 20

// ErrUnsupportedFileType is returned for anything that is not an .xlsx workbook.
var ErrUnsupportedFileType = errors.New("only .xlsx files are supported")

// ValidateUpload checks the declared name and type of an upload.
// PRE: none
// POST: Returns ErrUnsupportedFileType unless filename ends in .xlsx (any case)
// and contentType is empty, the xlsx MIME type, or a generic binary type
func ValidateUpload(filename, contentType string) error {
	if !strings.EqualFold(filepath.Ext(filename), ".xlsx") {
		return ErrUnsupportedFileType
	}
	switch mediaType(contentType) {
	case "", XLSXContentType, "application/octet-stream":
		return nil
	}
	return ErrUnsupportedFileType
}

// Sniff inspects the leading bytes of a file and rejects content that cannot
// be a workbook, such as a CSV renamed to .xlsx.
// POST: Returns nil for xlsx or zip content, ErrUnsupportedFileType otherwise
func Sniff(head []byte) error {
	m := mimetype.Detect(head)
	if m.Is(XLSXContentType) || m.Is("application/zip") {
		return nil
	}
	return ErrUnsupportedFileType
}

func mediaType(contentType string) string {
	mt, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(mt))
}
