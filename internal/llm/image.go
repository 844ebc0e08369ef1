package llm

import (
	"context"
	"encoding/base64"
	"errors"
)

// ErrImageUnsupported is returned when the configured provider has no
// image generation capability.
var ErrImageUnsupported = errors.New("provider does not support image generation")

// ImageRequest describes an image to generate.
type ImageRequest struct {
	Prompt string

	// AspectRatio such as "1:1". Providers map it to their nearest size.
	AspectRatio string
}

// Image is a generated raster image.
type Image struct {
	MIMEType string
	Data     []byte
	Model    string
}

// DataURI renders the image as a base64 data URI.
func (i *Image) DataURI() string {
	mime := i.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// ImageGenerator is implemented by providers that can produce images.
// Decorators implement it unconditionally and report ErrImageUnsupported
// when the wrapped provider cannot.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, req ImageRequest) (*Image, error)
}

// GenerateImage asks p for an image, returning ErrImageUnsupported when p
// has no image capability.
func GenerateImage(ctx context.Context, p Provider, req ImageRequest) (*Image, error) {
	ig, ok := p.(ImageGenerator)
	if !ok {
		return nil, ErrImageUnsupported
	}
	return ig.GenerateImage(ctx, req)
}
