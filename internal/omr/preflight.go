package omr

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
)

// Pre-flight acceptance thresholds. A filled optical form is a portrait-ish
// document on light paper with dark marks, which shows up as a plausible
// aspect ratio, high red-channel variance and a bright average.
const (
	minAspectRatio  = 0.8
	maxAspectRatio  = 2.0
	minContrast     = 30.0
	minBrightness   = 150.0
	maxSamplePixels = 1 << 18
)

// PreflightStats are the measurements behind a pre-flight verdict, returned
// to the caller for operator-facing debugging.
type PreflightStats struct {
	AspectRatio     float64 `json:"aspect_ratio"`
	Brightness      float64 `json:"brightness"`
	Contrast        float64 `json:"contrast"`
	HighContrast    bool    `json:"high_contrast"`
	LightBackground bool    `json:"light_background"`
}

// FormDetected reports whether the measurements plausibly describe an
// optical form.
func (s PreflightStats) FormDetected() bool {
	return s.AspectRatio > minAspectRatio && s.AspectRatio < maxAspectRatio &&
		s.HighContrast && s.LightBackground
}

// Preflight decodes an uploaded scan and measures whether it could plausibly
// be an optical form. It is a coarse gate before letter extraction, not a
// scoring input.
func Preflight(r io.Reader) (PreflightStats, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return PreflightStats{}, fmt.Errorf("decode scan image: %w", err)
	}
	return Analyze(img), nil
}

// Analyze measures aspect ratio, brightness and red-channel contrast over
// the image, subsampling large scans to bound the work.
func Analyze(img image.Image) PreflightStats {
	bounds := img.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w == 0 || h == 0 {
		return PreflightStats{}
	}

	step := 1
	for (w/step)*(h/step) > maxSamplePixels {
		step++
	}

	var sumR, sumG, sumB, sumRSq float64
	var n float64

	for y := bounds.Min.Y; y < bounds.Max.Y; y += step {
		for x := bounds.Min.X; x < bounds.Max.X; x += step {
			r, g, b, _ := img.At(x, y).RGBA()
			// 16-bit channels down to the 0–255 range.
			rf := float64(r >> 8)
			gf := float64(g >> 8)
			bf := float64(b >> 8)

			sumR += rf
			sumG += gf
			sumB += bf
			sumRSq += rf * rf
			n++
		}
	}

	meanR := sumR / n
	variance := sumRSq/n - meanR*meanR
	if variance < 0 {
		variance = 0
	}
	stddevR := math.Sqrt(variance)
	brightness := (meanR + sumG/n + sumB/n) / 3

	return PreflightStats{
		AspectRatio:     float64(h) / float64(w),
		Brightness:      brightness,
		Contrast:        stddevR,
		HighContrast:    stddevR > minContrast,
		LightBackground: brightness > minBrightness,
	}
}
