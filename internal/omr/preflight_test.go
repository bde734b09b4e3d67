package omr

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
)

// formImage paints a light page with dark marks scattered over it, the
// signature a scanned answer sheet leaves in the channel statistics.
func formImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if (x/10+y/10)%4 == 0 {
				img.Set(x, y, color.RGBA{20, 20, 20, 255})
			} else {
				img.Set(x, y, color.RGBA{245, 245, 245, 255})
			}
		}
	}
	return img
}

func flatImage(w, h int, c color.RGBA) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestAnalyze_AcceptsPlausibleForm(t *testing.T) {
	stats := Analyze(formImage(200, 280))

	if !stats.FormDetected() {
		t.Fatalf("plausible form rejected: %+v", stats)
	}
	if !stats.HighContrast || !stats.LightBackground {
		t.Errorf("expected high contrast on light background, got %+v", stats)
	}
}

func TestAnalyze_Rejections(t *testing.T) {
	tests := []struct {
		name string
		img  image.Image
	}{
		{name: "landscape strip aspect", img: formImage(600, 100)},
		{name: "tall strip aspect", img: formImage(100, 600)},
		{name: "dark photo", img: flatImage(200, 280, color.RGBA{40, 40, 40, 255})},
		{name: "flat white no marks", img: flatImage(200, 280, color.RGBA{250, 250, 250, 255})},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if stats := Analyze(tc.img); stats.FormDetected() {
				t.Errorf("expected rejection, got %+v", stats)
			}
		})
	}
}

func TestPreflight_DecodesUpload(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, formImage(200, 280)); err != nil {
		t.Fatal(err)
	}

	stats, err := Preflight(&buf)
	if err != nil {
		t.Fatalf("Preflight() error = %v", err)
	}
	if !stats.FormDetected() {
		t.Errorf("encoded form rejected: %+v", stats)
	}
}

func TestPreflight_RejectsGarbage(t *testing.T) {
	if _, err := Preflight(bytes.NewReader([]byte("not an image"))); err == nil {
		t.Fatal("expected decode error for non-image payload")
	}
}
