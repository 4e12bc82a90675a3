// Package imageutil provides the decode, resize, compress and encode
// plumbing around the pixelation engine. Images are held as straight
// (non-premultiplied) RGBA so the alpha channel of every pixel survives
// the block fill untouched.
package imageutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
)

// RGB represents a color in the RGB color space with 8-bit channels.
type RGB struct {
	R, G, B uint8
}

// ToColor converts RGB to an opaque color.NRGBA.
func (rgb RGB) ToColor() color.NRGBA {
	return color.NRGBA{R: rgb.R, G: rgb.G, B: rgb.B, A: 255}
}

// RGBFromColor converts a color.Color to RGB, dropping alpha.
func RGBFromColor(c color.Color) RGB {
	n := color.NRGBAModel.Convert(c).(color.NRGBA)
	return RGB{R: n.R, G: n.G, B: n.B}
}

// NRGBAImage wraps image.NRGBA with convenience methods for pixel access.
// Images built by this package are always tight: origin at (0, 0) and
// Stride == 4*Width, so Pix is a PixelBuffer.
type NRGBAImage struct {
	*image.NRGBA
}

// NewNRGBAImage creates a new NRGBAImage with the specified dimensions.
func NewNRGBAImage(width, height int) *NRGBAImage {
	return &NRGBAImage{
		NRGBA: image.NewNRGBA(image.Rect(0, 0, width, height)),
	}
}

// NRGBAImageFromImage converts any image.Image to a tight NRGBAImage.
func NRGBAImageFromImage(img image.Image) *NRGBAImage {
	bounds := img.Bounds()
	dst := NewNRGBAImage(bounds.Dx(), bounds.Dy())
	if wrapped, ok := img.(*NRGBAImage); ok {
		img = wrapped.NRGBA
	}
	if src, ok := img.(*image.NRGBA); ok {
		for y := 0; y < bounds.Dy(); y++ {
			off := src.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(dst.Pix[y*dst.Stride:(y+1)*dst.Stride], src.Pix[off:off+dst.Stride])
		}
		return dst
	}
	draw.Draw(dst.NRGBA, dst.Bounds(), img, bounds.Min, draw.Src)
	return dst
}

// FromPixelBuffer wraps a row-major RGBA buffer as an image without
// copying. The buffer length must be width*height*4.
func FromPixelBuffer(buf []byte, width, height int) (*NRGBAImage, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("invalid dimensions %dx%d", width, height)
	}
	if len(buf) != width*height*4 {
		return nil, fmt.Errorf("%w: got %d bytes for %dx%d",
			ErrBufferLengthMismatch, len(buf), width, height)
	}
	return &NRGBAImage{
		NRGBA: &image.NRGBA{
			Pix:    buf,
			Stride: width * 4,
			Rect:   image.Rect(0, 0, width, height),
		},
	}, nil
}

// PixelBuffer returns the image's pixels as a row-major RGBA buffer.
// The returned slice aliases the image when it is already tight.
func (img *NRGBAImage) PixelBuffer() []byte {
	w, h := img.Width(), img.Height()
	if img.Stride == w*4 && img.Rect.Min == (image.Point{}) {
		return img.Pix[:w*h*4]
	}
	return NRGBAImageFromImage(img.NRGBA).Pix
}

// Width returns the image width.
func (img *NRGBAImage) Width() int {
	return img.Bounds().Dx()
}

// Height returns the image height.
func (img *NRGBAImage) Height() int {
	return img.Bounds().Dy()
}

// GetRGB returns the RGB value at (x, y).
func (img *NRGBAImage) GetRGB(x, y int) RGB {
	c := img.NRGBAAt(x, y)
	return RGB{R: c.R, G: c.G, B: c.B}
}

// SetRGB sets the RGB value at (x, y) and leaves alpha alone.
func (img *NRGBAImage) SetRGB(x, y int, c RGB) {
	a := img.NRGBAAt(x, y).A
	img.SetNRGBA(x, y, color.NRGBA{R: c.R, G: c.G, B: c.B, A: a})
}

// Alpha returns the alpha value at (x, y).
func (img *NRGBAImage) Alpha(x, y int) uint8 {
	return img.NRGBAAt(x, y).A
}

// Clone creates a deep, tight copy of the image.
func (img *NRGBAImage) Clone() *NRGBAImage {
	clone := NewNRGBAImage(img.Width(), img.Height())
	copy(clone.Pix, img.PixelBuffer())
	return clone
}
