package decode

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"mime"
	"strings"
	"unicode/utf8"

	"github.com/ledongthuc/pdf"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"golang.org/x/net/html/charset"

	"llm-relay/api/internal/apperr"
	"llm-relay/api/internal/content"
)

const (
	mediaPDF   = "application/pdf"
	mediaPlain = "text/plain"
)

// Image decodes b without looking at any declared content type.
func Image(b []byte) (content.Image, error) {
	if len(b) == 0 {
		return content.Image{}, apperr.New(apperr.Decode, "empty image body")
	}
	img, format, err := image.Decode(bytes.NewReader(b))
	if err != nil {
		return content.Image{}, apperr.Wrap(apperr.Decode, "cannot identify image file", err)
	}
	return content.Image{Img: img, Format: format, Data: b}, nil
}

// Document extracts text from a PDF or plain-text body chosen by contentType.
func Document(b []byte, contentType string) (content.Text, error) {
	contentType = MediaType(contentType, b)
	ct := strings.ToLower(contentType)
	switch {
	case strings.Contains(ct, mediaPDF):
		text, err := PDFText(b)
		if err != nil {
			return content.Text{}, err
		}
		return content.Text{Body: text, MediaType: mediaPDF}, nil
	case strings.Contains(ct, mediaPlain):
		text, err := PlainText(b, contentType)
		if err != nil {
			return content.Text{}, err
		}
		return content.Text{Body: text, MediaType: mediaPlain}, nil
	default:
		return content.Text{}, apperr.New(apperr.Unsupported, "Unsupported file type from URL.")
	}
}

// PDFText concatenates the text of every page in page order.
func PDFText(b []byte) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperr.New(apperr.Decode, fmt.Sprintf("malformed pdf: %v", r))
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(b), int64(len(b)))
	if err != nil {
		return "", apperr.Wrap(apperr.Decode, "read pdf", err)
	}
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		// font resource names are page-local, so let each page resolve its own
		pageText, err := p.GetPlainText(nil)
		if err != nil {
			return "", apperr.Wrap(apperr.Decode, fmt.Sprintf("page %d", i), err)
		}
		sb.WriteString(pageText)
	}
	return sb.String(), nil
}

// PlainText honours the charset parameter of contentType. Without one, valid
// UTF-8 is returned as is and anything else is decoded by sniffing.
func PlainText(b []byte, contentType string) (string, error) {
	label := ""
	if _, params, err := mime.ParseMediaType(contentType); err == nil {
		label = params["charset"]
	}

	var (
		r   io.Reader
		err error
	)
	switch {
	case label != "":
		r, err = charset.NewReaderLabel(label, bytes.NewReader(b))
	case utf8.Valid(b):
		return string(b), nil
	default:
		r, err = charset.NewReader(bytes.NewReader(b), contentType)
	}
	if err != nil {
		return "", apperr.Wrap(apperr.Decode, "text charset", err)
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return "", apperr.Wrap(apperr.Decode, "decode text", err)
	}
	return string(out), nil
}
