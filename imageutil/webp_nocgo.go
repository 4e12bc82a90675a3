//go:build !cgo

package imageutil

import (
	"fmt"
	"image"
	"io"
)

func encodeWebP(w io.Writer, img image.Image) error {
	return fmt.Errorf("%w: webp encoding requires cgo", ErrUnsupportedFormat)
}
