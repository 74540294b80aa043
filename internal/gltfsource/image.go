package gltfsource

import (
	"bytes"
	"encoding/base64"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	// Additional decoders registered with image.Decode.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/scenegraph/internal/logger"
	"github.com/Faultbox/scenegraph/internal/scene"
)

// images decodes every image and expands it to 4-channel RGBA8. Source
// images without alpha come out opaque.
func (c *converter) images() ([]scene.SourceImage, error) {
	out := make([]scene.SourceImage, len(c.doc.Images))
	for i, img := range c.doc.Images {
		data, err := c.imageBytes(i)
		if err != nil {
			return nil, err
		}
		decoded, format, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, malformed("image %d: %v", i, err)
		}

		b := decoded.Bounds()
		rgba := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), decoded, b.Min, draw.Src)

		name := img.Name
		if name == "" {
			name = img.URI
		}
		out[i] = scene.SourceImage{
			Name:     name,
			Width:    b.Dx(),
			Height:   b.Dy(),
			Channels: 4,
			Pixels:   rgba.Pix,
		}

		logger.Debug("image decoded",
			zap.Int("image", i),
			zap.String("format", format),
			zap.Int("width", b.Dx()),
			zap.Int("height", b.Dy()))
	}
	return out, nil
}

func (c *converter) imageBytes(i int) ([]byte, error) {
	img := c.doc.Images[i]
	switch {
	case img.BufferView != nil:
		data, _, err := c.bufferView(*img.BufferView)
		return data, err
	case strings.HasPrefix(img.URI, "data:"):
		_, payload, ok := strings.Cut(img.URI, ";base64,")
		if !ok {
			return nil, malformed("image %d: data URI is not base64", i)
		}
		data, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, malformed("image %d: %v", i, err)
		}
		return data, nil
	case img.URI != "":
		name, err := url.PathUnescape(img.URI)
		if err != nil {
			return nil, malformed("image %d: %v", i, err)
		}
		data, err := os.ReadFile(filepath.Join(c.dir, filepath.FromSlash(name)))
		if err != nil {
			return nil, wrapf(err, "image %d", i)
		}
		return data, nil
	default:
		return nil, malformed("image %d has neither uri nor buffer view", i)
	}
}
