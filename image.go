package pixelate

import (
	"github.com/wbrown/pixelate/imageutil"
)

// PixelateImage pixelates img into a new image of the same size. The
// source image is not modified.
func PixelateImage(img *imageutil.NRGBAImage, blockSize int) (*imageutil.NRGBAImage, error) {
	w, h := img.Width(), img.Height()
	out, err := Pixelate(img.PixelBuffer(), w, h, blockSize)
	if err != nil {
		return nil, err
	}
	return imageutil.FromPixelBuffer(out, w, h)
}
