// Package imaging ingests cover art: uploads are sniffed, shrunk to cover size
// and stored as JPEG files, with a generated placeholder for missing covers.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

const (
	// MaxUploadSize is the largest accepted upload in bytes.
	MaxUploadSize = 5 << 20

	// MaxDimension bounds the longer side of a stored cover.
	MaxDimension = 800

	// MaxPixels rejects images whose decoded size would be unreasonable.
	MaxPixels = 40_000_000

	JPEGQuality = 85
)

// ErrUnsupportedFormat is returned for uploads that are not JPEG or PNG.
var ErrUnsupportedFormat = errors.New("unsupported image format (only JPEG and PNG accepted)")

var allowedMIME = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
}

// Process reads an uploaded cover, checks its real format, scales it down to
// MaxDimension and re-encodes it as JPEG.
func Process(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxUploadSize+1))
	if err != nil {
		return nil, fmt.Errorf("reading image data: %w", err)
	}
	if len(data) > MaxUploadSize {
		return nil, fmt.Errorf("image larger than %d bytes", MaxUploadSize)
	}

	if mime := http.DetectContentType(data); !allowedMIME[mime] {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mime)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("reading image header: %w", err)
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, fmt.Errorf("image too large: %dx%d", cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding image: %w", err)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, fit(img, MaxDimension), &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("encoding JPEG: %w", err)
	}
	return buf.Bytes(), nil
}

// fit scales img so neither side exceeds maxDim, keeping the aspect ratio.
// Smaller images are returned unchanged.
func fit(img image.Image, maxDim int) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= maxDim && h <= maxDim {
		return img
	}

	if w > h {
		h, w = max(1, h*maxDim/w), maxDim
	} else {
		w, h = max(1, w*maxDim/h), maxDim
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}
