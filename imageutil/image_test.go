package imageutil

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestNewNRGBAImage(t *testing.T) {
	img := NewNRGBAImage(100, 50)
	if img.Width() != 100 {
		t.Errorf("Expected width 100, got %d", img.Width())
	}
	if img.Height() != 50 {
		t.Errorf("Expected height 50, got %d", img.Height())
	}
	if len(img.PixelBuffer()) != 100*50*4 {
		t.Errorf("Expected buffer of %d bytes, got %d", 100*50*4, len(img.PixelBuffer()))
	}
}

func TestNRGBAImageGetSetRGBKeepsAlpha(t *testing.T) {
	img := NewNRGBAImage(10, 10)
	img.SetNRGBA(5, 5, color.NRGBA{R: 1, G: 2, B: 3, A: 77})
	c := RGB{R: 100, G: 150, B: 200}
	img.SetRGB(5, 5, c)

	if got := img.GetRGB(5, 5); got != c {
		t.Errorf("Expected %v, got %v", c, got)
	}
	if a := img.Alpha(5, 5); a != 77 {
		t.Errorf("SetRGB should keep alpha 77, got %d", a)
	}
}

func TestNRGBAImageClone(t *testing.T) {
	img := NewNRGBAImage(10, 10)
	img.SetNRGBA(5, 5, color.NRGBA{R: 255, A: 255})

	clone := img.Clone()
	if clone.GetRGB(5, 5) != img.GetRGB(5, 5) {
		t.Error("Clone should have same pixel values")
	}

	// Modify clone, original should be unchanged
	clone.SetRGB(5, 5, RGB{R: 0, G: 255, B: 0})
	if img.GetRGB(5, 5).G != 0 {
		t.Error("Modifying clone should not affect original")
	}
}

func TestFromPixelBuffer(t *testing.T) {
	buf := []byte{
		10, 20, 30, 40, 50, 60, 70, 80,
		90, 100, 110, 120, 130, 140, 150, 160,
	}
	img, err := FromPixelBuffer(buf, 2, 2)
	if err != nil {
		t.Fatalf("FromPixelBuffer failed: %v", err)
	}
	if got := img.NRGBAAt(1, 1); got != (color.NRGBA{R: 130, G: 140, B: 150, A: 160}) {
		t.Errorf("Expected pixel (130,140,150,160), got %v", got)
	}
	if &img.PixelBuffer()[0] != &buf[0] {
		t.Error("PixelBuffer of a tight image should alias the buffer")
	}

	if _, err := FromPixelBuffer(buf[:12], 2, 2); !errors.Is(err, ErrBufferLengthMismatch) {
		t.Errorf("Expected ErrBufferLengthMismatch, got %v", err)
	}
	if _, err := FromPixelBuffer(buf, 0, 2); err == nil {
		t.Error("Expected error for zero width")
	}
}

func TestNRGBAImageFromSubImage(t *testing.T) {
	src := CreateNoiseImage(10, 10)
	sub := src.SubImage(image.Rect(3, 4, 8, 9)).(*image.NRGBA)

	img := NRGBAImageFromImage(sub)
	if img.Width() != 5 || img.Height() != 5 {
		t.Fatalf("Expected 5x5, got %dx%d", img.Width(), img.Height())
	}
	if img.Bounds().Min != (image.Point{}) {
		t.Errorf("Expected origin at 0,0, got %v", img.Bounds().Min)
	}
	if got, want := img.NRGBAAt(0, 0), src.NRGBAAt(3, 4); got != want {
		t.Errorf("Expected %v, got %v", want, got)
	}

	// A wrapped sub-image yields a tight copy from PixelBuffer
	wrapped := &NRGBAImage{NRGBA: sub}
	if len(wrapped.PixelBuffer()) != 5*5*4 {
		t.Errorf("Expected tight buffer of %d bytes, got %d", 5*5*4, len(wrapped.PixelBuffer()))
	}
}

func TestNRGBAImageFromRGBA(t *testing.T) {
	rgba := image.NewRGBA(image.Rect(0, 0, 2, 1))
	rgba.SetRGBA(0, 0, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	// Premultiplied half-transparent red
	rgba.SetRGBA(1, 0, color.RGBA{R: 128, A: 128})

	img := NRGBAImageFromImage(rgba)
	if got := img.NRGBAAt(0, 0); got != (color.NRGBA{R: 200, G: 100, B: 50, A: 255}) {
		t.Errorf("Expected opaque pixel unchanged, got %v", got)
	}
	if got := img.NRGBAAt(1, 0); got.R != 255 || got.A != 128 {
		t.Errorf("Expected straight alpha red (255, a=128), got %v", got)
	}
}

func TestResize(t *testing.T) {
	img := CreateGradientImage(100, 100)

	// Downscale
	resized := Resize(img, 50, 50, InterpolationArea)
	if resized.Width() != 50 || resized.Height() != 50 {
		t.Errorf("Expected 50x50, got %dx%d", resized.Width(), resized.Height())
	}

	// Upscale
	resized = Resize(img, 200, 200, InterpolationLinear)
	if resized.Width() != 200 || resized.Height() != 200 {
		t.Errorf("Expected 200x200, got %dx%d", resized.Width(), resized.Height())
	}
}

func TestResizeNearestKeepsBlocks(t *testing.T) {
	img := CreateCheckerboardImage(8, 8, 4)
	up := Resize(img, 32, 32, InterpolationNearest)
	want := CreateCheckerboardImage(32, 32, 16)
	if diff := CalculateMaxDiff(up, want); diff != 0 {
		t.Errorf("Nearest upscale should keep hard block edges, max diff %d", diff)
	}
}

func TestFitSize(t *testing.T) {
	cases := []struct {
		w, h, maxDim int
		wantW, wantH int
	}{
		{100, 50, 200, 100, 50},
		{4000, 3000, 1920, 1920, 1440},
		{3000, 4000, 1920, 1440, 1920},
		{1920, 1920, 1920, 1920, 1920},
		{5000, 1, 1920, 1920, 1},
		{640, 480, 0, 640, 480},
	}
	for _, tc := range cases {
		w, h := FitSize(tc.w, tc.h, tc.maxDim)
		if w != tc.wantW || h != tc.wantH {
			t.Errorf("FitSize(%d, %d, %d) = %dx%d, expected %dx%d",
				tc.w, tc.h, tc.maxDim, w, h, tc.wantW, tc.wantH)
		}
	}
}

func TestFitReturnsOriginalWhenSmall(t *testing.T) {
	img := CreateGradientImage(20, 10)
	if Fit(img, 100, InterpolationArea) != img {
		t.Error("Fit should return the same image when it already fits")
	}
	fitted := Fit(img, 10, InterpolationArea)
	if fitted.Width() != 10 || fitted.Height() != 5 {
		t.Errorf("Expected 10x5, got %dx%d", fitted.Width(), fitted.Height())
	}
}
