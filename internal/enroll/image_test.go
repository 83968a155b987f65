package enroll

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.White)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h)), nil); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestPrepareImage(t *testing.T) {
	tests := []struct {
		name       string
		data       func(t *testing.T) []byte
		maxSize    int
		wantWidth  int
		wantHeight int
	}{
		{name: "landscape png is downscaled", data: func(t *testing.T) []byte { return encodePNG(t, 400, 200) }, maxSize: 100, wantWidth: 100, wantHeight: 50},
		{name: "portrait png is downscaled", data: func(t *testing.T) []byte { return encodePNG(t, 100, 300) }, maxSize: 150, wantWidth: 50, wantHeight: 150},
		{name: "small png is only re-encoded", data: func(t *testing.T) []byte { return encodePNG(t, 40, 30) }, maxSize: 100, wantWidth: 40, wantHeight: 30},
		{name: "no limit", data: func(t *testing.T) []byte { return encodePNG(t, 400, 200) }, maxSize: 0, wantWidth: 400, wantHeight: 200},
		{name: "large jpeg is downscaled", data: func(t *testing.T) []byte { return encodeJPEG(t, 320, 320) }, maxSize: 160, wantWidth: 160, wantHeight: 160},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := PrepareImage(tt.data(t), tt.maxSize)
			if err != nil {
				t.Fatalf("PrepareImage() error: %v", err)
			}
			cfg, format, err := image.DecodeConfig(bytes.NewReader(out))
			if err != nil {
				t.Fatalf("output does not decode: %v", err)
			}
			if format != "jpeg" {
				t.Errorf("expected jpeg output, got %s", format)
			}
			if cfg.Width != tt.wantWidth || cfg.Height != tt.wantHeight {
				t.Errorf("expected %dx%d, got %dx%d", tt.wantWidth, tt.wantHeight, cfg.Width, cfg.Height)
			}
		})
	}
}

func TestPrepareImage_JPEGPassthrough(t *testing.T) {
	data := encodeJPEG(t, 50, 50)

	out, err := PrepareImage(data, 100)
	if err != nil {
		t.Fatalf("PrepareImage() error: %v", err)
	}

	if !bytes.Equal(out, data) {
		t.Error("expected a fitting JPEG to be returned unchanged")
	}
}

func TestPrepareImage_InvalidData(t *testing.T) {
	if _, err := PrepareImage([]byte("definitely not an image"), 100); err == nil {
		t.Error("expected error for invalid image data")
	}
}
