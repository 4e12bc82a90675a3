// Package pixelate replaces square blocks of an image with a single flat
// color. The representative color of each block is the RGB value of its
// top-left pixel; alpha is never resampled, every pixel keeps its own.
package pixelate

import (
	"fmt"
	"image"
	"math"
)

const (
	// MinBlockSize and MaxBlockSize bound the block size accepted at the
	// application boundary. The engine itself accepts any size >= 1.
	MinBlockSize = 1
	MaxBlockSize = 20

	// DefaultBlockSize is used when no block size is configured.
	DefaultBlockSize = 10

	// DefaultOutputName is the suggested file name for exported results.
	DefaultOutputName = "pixelated_image.png"
)

// ValidateBlockSize rejects block sizes outside [MinBlockSize, MaxBlockSize].
func ValidateBlockSize(blockSize int) error {
	if blockSize < MinBlockSize || blockSize > MaxBlockSize {
		return fmt.Errorf("%w: block size %d outside [%d, %d]",
			ErrInvalidParameter, blockSize, MinBlockSize, MaxBlockSize)
	}
	return nil
}

// ClampBlockSize clamps blockSize into [MinBlockSize, MaxBlockSize].
func ClampBlockSize(blockSize int) int {
	return min(max(blockSize, MinBlockSize), MaxBlockSize)
}

// Pixelate returns a copy of buf, a row-major RGBA pixel buffer of
// width x height, in which every blockSize x blockSize block carries the
// RGB of the block's top-left pixel. Blocks on the right and bottom edges
// are clipped to the image. Alpha passes through unchanged.
//
// A blockSize of 1 returns an identical copy.
func Pixelate(buf []byte, width, height, blockSize int) ([]byte, error) {
	if err := validate(buf, width, height, blockSize); err != nil {
		return nil, err
	}
	out := make([]byte, len(buf))
	copy(out, buf)
	fillBlocks(out, buf, width, height, blockSize)
	return out, nil
}

// PixelateInPlace is Pixelate writing into buf.
func PixelateInPlace(buf []byte, width, height, blockSize int) error {
	if err := validate(buf, width, height, blockSize); err != nil {
		return err
	}
	fillBlocks(buf, buf, width, height, blockSize)
	return nil
}

func validate(buf []byte, width, height, blockSize int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: dimensions %dx%d", ErrInvalidParameter, width, height)
	}
	if width > math.MaxInt/4/height {
		return fmt.Errorf("%w: dimensions %dx%d overflow", ErrInvalidParameter, width, height)
	}
	if blockSize < 1 {
		return fmt.Errorf("%w: block size %d", ErrInvalidParameter, blockSize)
	}
	if len(buf) != width*height*4 {
		return fmt.Errorf("%w: got %d bytes, want %d for %dx%d",
			ErrBufferLengthMismatch, len(buf), width*height*4, width, height)
	}
	return nil
}

// fillBlocks samples each block origin from src and writes its RGB over
// the clipped block in dst. dst and src may be the same slice: a block's
// origin is read before any pixel of that block is written, and no other
// block reads it.
func fillBlocks(dst, src []byte, width, height, blockSize int) {
	stride := width * 4
	for y := 0; y < height; y += blockSize {
		yEnd := min(y+blockSize, height)
		for x := 0; x < width; x += blockSize {
			xEnd := min(x+blockSize, width)
			i := y*stride + x*4
			r, g, b := src[i], src[i+1], src[i+2]
			for by := y; by < yEnd; by++ {
				row := dst[by*stride+x*4 : by*stride+xEnd*4]
				for j := 0; j < len(row); j += 4 {
					row[j], row[j+1], row[j+2] = r, g, b
				}
			}
		}
	}
}

// BlockRects returns the blocks of a width x height image in row-major
// order, clipped at the right and bottom edges.
func BlockRects(width, height, blockSize int) []image.Rectangle {
	if width <= 0 || height <= 0 || blockSize < 1 {
		return nil
	}
	cols := (width + blockSize - 1) / blockSize
	rows := (height + blockSize - 1) / blockSize
	rects := make([]image.Rectangle, 0, cols*rows)
	for y := 0; y < height; y += blockSize {
		for x := 0; x < width; x += blockSize {
			rects = append(rects, image.Rect(x, y,
				min(x+blockSize, width), min(y+blockSize, height)))
		}
	}
	return rects
}
