//go:build gocv

package pixelate

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/wbrown/pixelate/imageutil"
)

// referencePixelate fills each block with its top-left color using
// OpenCV's filled rectangles, the same way a 2D canvas fillRect does.
func referencePixelate(img *imageutil.NRGBAImage, blockSize int) *imageutil.NRGBAImage {
	w, h := img.Width(), img.Height()
	mat := gocv.NewMatWithSize(h, w, gocv.MatTypeCV8UC3)
	defer mat.Close()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := img.GetRGB(x, y)
			// gocv uses BGR format
			mat.SetUCharAt(y, x*3, c.B)
			mat.SetUCharAt(y, x*3+1, c.G)
			mat.SetUCharAt(y, x*3+2, c.R)
		}
	}

	for y := 0; y < h; y += blockSize {
		for x := 0; x < w; x += blockSize {
			v := mat.GetVecbAt(y, x)
			gocv.Rectangle(&mat, image.Rect(x, y, x+blockSize, y+blockSize),
				color.RGBA{R: v[2], G: v[1], B: v[0], A: 255}, -1)
		}
	}

	out := img.Clone()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := mat.GetVecbAt(y, x)
			out.SetRGB(x, y, imageutil.RGB{R: v[2], G: v[1], B: v[0]})
		}
	}
	return out
}

func TestPixelateMatchesOpenCVFill(t *testing.T) {
	for _, tc := range []struct {
		width, height, blockSize int
	}{
		{64, 48, 8},
		{37, 23, 5},
		{10, 10, 4},
		{9, 31, 20},
	} {
		src := imageutil.CreateNoiseImage(tc.width, tc.height)
		want := referencePixelate(src, tc.blockSize)
		got, err := PixelateImage(src, tc.blockSize)
		if err != nil {
			t.Fatalf("PixelateImage failed: %v", err)
		}
		if diff := imageutil.CalculateMaxDiff(got, want); diff != 0 {
			t.Errorf("%dx%d block %d: max diff %d against OpenCV reference",
				tc.width, tc.height, tc.blockSize, diff)
		}
	}
}

func TestDecodeFallsBackToOpenCV(t *testing.T) {
	src := imageutil.CreateColorBarsImage(16, 8)
	mat := gocv.NewMatWithSize(8, 16, gocv.MatTypeCV8UC3)
	defer mat.Close()
	for y := 0; y < 8; y++ {
		for x := 0; x < 16; x++ {
			c := src.GetRGB(x, y)
			mat.SetUCharAt(y, x*3, c.B)
			mat.SetUCharAt(y, x*3+1, c.G)
			mat.SetUCharAt(y, x*3+2, c.R)
		}
	}
	// PPM is not registered with the Go image package.
	buf, err := gocv.IMEncode(".ppm", mat)
	if err != nil {
		t.Fatalf("IMEncode failed: %v", err)
	}
	defer buf.Close()

	img, format, err := imageutil.Decode(buf.GetBytes())
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if format != "opencv" {
		t.Errorf("Expected opencv fallback, got %q", format)
	}
	if diff := imageutil.CalculateMaxDiff(img, src); diff != 0 {
		t.Errorf("OpenCV decode differs, max diff %d", diff)
	}
}
