package content

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
)

type Kind int

const (
	KindImage Kind = iota + 1
	KindDocument
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindDocument:
		return "document"
	default:
		return "unknown"
	}
}

// Content is either an Image or a Text. The set is closed.
type Content interface {
	Kind() Kind
	isContent()
}

type Image struct {
	Img    image.Image
	Format string // jpeg, png, gif, webp, bmp, tiff
	Data   []byte
}

func (Image) Kind() Kind { return KindImage }
func (Image) isContent() {}

// Blob returns bytes and MIME type suitable for inline model input.
// Formats the model does not accept natively are re-encoded as PNG.
func (i Image) Blob() (string, []byte, error) {
	switch i.Format {
	case "jpeg", "png", "webp":
		return "image/" + i.Format, i.Data, nil
	}
	if i.Img == nil {
		return "", nil, fmt.Errorf("image %s has no decoded pixels", i.Format)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, i.Img); err != nil {
		return "", nil, fmt.Errorf("re-encode %s as png: %w", i.Format, err)
	}
	return "image/png", buf.Bytes(), nil
}

type Text struct {
	Body      string
	MediaType string
}

func (Text) Kind() Kind { return KindDocument }
func (Text) isContent() {}
