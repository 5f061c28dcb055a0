package store

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	_ "image/gif"
	_ "image/png"

	"golang.org/x/image/draw"
)

const (
	// ImageMaxSide caps the longest side of an uploaded image in pixels.
	ImageMaxSide = 800
	// ImageJPEGQuality is the fixed encoding quality for stored images.
	ImageJPEGQuality = 80
)

// CompressImage decodes the source image, scales it so the longest side does
// not exceed maxSide, and re-encodes it as JPEG at the fixed quality. The
// transform is lossy and deterministic; callers always receive JPEG bytes.
func CompressImage(data []byte, maxSide int) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("store: decode image: %w", err)
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	if width > maxSide || height > maxSide {
		var ratio float64
		if width > height {
			ratio = float64(maxSide) / float64(width)
		} else {
			ratio = float64(maxSide) / float64(height)
		}
		newWidth := int(float64(width) * ratio)
		newHeight := int(float64(height) * ratio)

		scaled := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, bounds, draw.Over, nil)
		src = scaled
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, src, &jpeg.Options{Quality: ImageJPEGQuality}); err != nil {
		return nil, fmt.Errorf("store: encode jpeg: %w", err)
	}
	return out.Bytes(), nil
}
