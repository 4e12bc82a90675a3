package imageutil

import "golang.org/x/image/draw"

// Interpolation specifies the interpolation method for resizing.
type Interpolation int

const (
	// InterpolationArea uses Catmull-Rom for high-quality downscaling.
	InterpolationArea Interpolation = iota

	// InterpolationLinear uses bilinear interpolation.
	InterpolationLinear

	// InterpolationNearest uses nearest-neighbor interpolation.
	// Block edges stay crisp, so previews of pixelated output use it.
	InterpolationNearest
)

func (interp Interpolation) scaler() draw.Scaler {
	switch interp {
	case InterpolationLinear:
		return draw.BiLinear
	case InterpolationNearest:
		return draw.NearestNeighbor
	default:
		return draw.CatmullRom
	}
}

// Resize resizes an image to the specified dimensions using the given
// interpolation method.
func Resize(img *NRGBAImage, width, height int, interp Interpolation) *NRGBAImage {
	dst := NewNRGBAImage(width, height)
	interp.scaler().Scale(dst.NRGBA, dst.Bounds(), img.NRGBA, img.Bounds(), draw.Src, nil)
	return dst
}

// FitSize returns the largest dimensions no bigger than maxDim on either
// side that keep the aspect ratio of width x height. Sizes already within
// bounds, and a non-positive maxDim, return the input unchanged.
func FitSize(width, height, maxDim int) (int, int) {
	if maxDim <= 0 || (width <= maxDim && height <= maxDim) {
		return width, height
	}
	if width >= height {
		h := height * maxDim / width
		return maxDim, max(h, 1)
	}
	w := width * maxDim / height
	return max(w, 1), maxDim
}

// Fit downscales img so neither side exceeds maxDim. The original image
// is returned when it already fits.
func Fit(img *NRGBAImage, maxDim int, interp Interpolation) *NRGBAImage {
	w, h := FitSize(img.Width(), img.Height(), maxDim)
	if w == img.Width() && h == img.Height() {
		return img
	}
	return Resize(img, w, h, interp)
}
