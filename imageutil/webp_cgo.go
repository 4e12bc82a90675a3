//go:build cgo

package imageutil

import (
	"image"
	"io"

	"github.com/chai2010/webp"
)

// encodeWebP writes a lossless WebP so block edges are not smeared.
func encodeWebP(w io.Writer, img image.Image) error {
	return webp.Encode(w, img, &webp.Options{Lossless: true})
}
