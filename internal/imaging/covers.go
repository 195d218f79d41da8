package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/image/draw"
)

// Placeholder dimensions, matching the aspect of a typical box cover.
const (
	PlaceholderWidth  = 300
	PlaceholderHeight = 400
)

// ErrInvalidName is returned for cover names that are not plain file names.
var ErrInvalidName = errors.New("invalid cover name")

// Covers stores processed cover images as files in Dir.
// Cover names are opaque to callers and stored as a game's ImagePath.
type Covers struct {
	Dir string
}

// Save processes an uploaded image and writes it under a new random name,
// which it returns.
func (c *Covers) Save(r io.Reader) (string, error) {
	data, err := Process(r)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return "", fmt.Errorf("creating covers directory: %w", err)
	}

	name := uuid.NewString() + ".jpg"
	if err := os.WriteFile(filepath.Join(c.Dir, name), data, 0o644); err != nil {
		return "", fmt.Errorf("writing cover: %w", err)
	}
	return name, nil
}

// Load returns the bytes of a stored cover.
func (c *Covers) Load(name string) ([]byte, error) {
	path, err := c.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading cover: %w", err)
	}
	return data, nil
}

// Remove deletes a stored cover. Missing covers are not an error.
func (c *Covers) Remove(name string) error {
	path, err := c.path(name)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing cover: %w", err)
	}
	return nil
}

// Resolve returns the cover stored under name, or the placeholder when name
// is empty or no longer resolves. The second result reports whether the
// placeholder was used.
func (c *Covers) Resolve(name string) ([]byte, bool) {
	if name == "" {
		return Placeholder(), true
	}
	data, err := c.Load(name)
	if err != nil {
		slog.Debug("cover unavailable, using placeholder", "cover", name, "error", err)
		return Placeholder(), true
	}
	return data, false
}

func (c *Covers) path(name string) (string, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	return filepath.Join(c.Dir, name), nil
}

var placeholder = sync.OnceValue(func() []byte {
	img := image.NewRGBA(image.Rect(0, 0, PlaceholderWidth, PlaceholderHeight))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{0xd0, 0xd0, 0xd0, 0xff}), image.Point{}, draw.Src)

	// Darker inner frame.
	inner := image.Rect(20, 20, PlaceholderWidth-20, PlaceholderHeight-20)
	draw.Draw(img, inner, image.NewUniform(color.RGBA{0xb0, 0xb0, 0xb0, 0xff}), image.Point{}, draw.Src)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		panic(fmt.Sprintf("encoding placeholder: %v", err))
	}
	return buf.Bytes()
})

// Placeholder returns a generated JPEG shown for games without a cover.
func Placeholder() []byte {
	return placeholder()
}
