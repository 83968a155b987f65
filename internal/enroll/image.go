package enroll

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/kozaktomas/attendance/internal/constants"
)

// PrepareImage turns a reference photo into JPEG bytes the recognizer accepts.
// Images larger than maxSize on either side are downscaled keeping the aspect
// ratio. JPEGs that already fit are passed through untouched; every other
// format is re-encoded. maxSize <= 0 disables downscaling.
func PrepareImage(data []byte, maxSize int) ([]byte, error) {
	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	fits := maxSize <= 0 || (width <= maxSize && height <= maxSize)
	if fits && format == "jpeg" {
		return data, nil
	}

	var out image.Image = img
	if !fits {
		newWidth, newHeight := fitWithin(width, height, maxSize)
		resized := image.NewRGBA(image.Rect(0, 0, newWidth, newHeight))
		draw.BiLinear.Scale(resized, resized.Bounds(), img, bounds, draw.Over, nil)
		out = resized
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, out, &jpeg.Options{Quality: constants.JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	return buf.Bytes(), nil
}

// fitWithin scales width and height so the longer side equals maxSize.
func fitWithin(width, height, maxSize int) (int, int) {
	if width > height {
		return maxSize, max(1, int(float64(height)*float64(maxSize)/float64(width)))
	}
	return max(1, int(float64(width)*float64(maxSize)/float64(height))), maxSize
}
