package decode

import (
	"bytes"
	"mime"
	"net/http"
	"strings"
)

var pdfMagic = []byte("%PDF-")

// MediaType returns the declared media type, falling back to the body's
// signature when the origin sent none or a generic binary type.
func MediaType(declared string, b []byte) string {
	mt := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(mt); err == nil {
		mt = parsed
	}
	switch mt {
	case "", "application/octet-stream", "binary/octet-stream", "application/binary":
	default:
		return declared
	}

	if bytes.HasPrefix(b, pdfMagic) {
		return mediaPDF
	}
	if len(b) == 0 {
		return declared
	}
	if sniffed := http.DetectContentType(b); strings.HasPrefix(sniffed, mediaPlain) {
		return sniffed
	}
	return declared
}
