package imageutil

import (
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"image/png"
)

// Defaults for the compression pre-step: a 1 MB encoded target and a
// 1920 pixel longest side. The input is decoded at full resolution first,
// so peak memory follows the source size, bounded by MaxDecodeDimension.
const (
	DefaultMaxSizeMB      = 1.0
	DefaultMaxDimension   = 1920
	DefaultInitialQuality = 90
	DefaultMaxIterations  = 10

	// Each retry shrinks both dimensions and JPEG quality by this factor.
	compressStep = 0.95
	minQuality   = 10
)

// CompressOptions controls Compress.
type CompressOptions struct {
	// MaxSizeMB is the target encoded size in megabytes.
	MaxSizeMB float64
	// MaxDimension bounds the longest side in pixels.
	MaxDimension int
	// InitialQuality is the first JPEG quality tried (1-100).
	InitialQuality int
	// MaxIterations bounds the shrink-and-retry loop.
	MaxIterations int
	// OnProgress, if set, receives progress from 0 to 100.
	OnProgress func(percent int)
}

// DefaultCompressOptions returns the options used when none are given.
func DefaultCompressOptions() CompressOptions {
	return CompressOptions{
		MaxSizeMB:      DefaultMaxSizeMB,
		MaxDimension:   DefaultMaxDimension,
		InitialQuality: DefaultInitialQuality,
		MaxIterations:  DefaultMaxIterations,
	}
}

func (o CompressOptions) withDefaults() CompressOptions {
	d := DefaultCompressOptions()
	if o.MaxSizeMB <= 0 {
		o.MaxSizeMB = d.MaxSizeMB
	}
	if o.MaxDimension <= 0 {
		o.MaxDimension = d.MaxDimension
	}
	if o.InitialQuality <= 0 || o.InitialQuality > 100 {
		o.InitialQuality = d.InitialQuality
	}
	if o.MaxIterations <= 0 {
		o.MaxIterations = d.MaxIterations
	}
	return o
}

func (o CompressOptions) maxBytes() int {
	return int(o.MaxSizeMB * 1024 * 1024)
}

func (o CompressOptions) progress(p int) {
	if o.OnProgress != nil {
		o.OnProgress(p)
	}
}

// Compress re-encodes image bytes so the result fits within
// opts.MaxDimension on either side and, if possible, within
// opts.MaxSizeMB. Input that already satisfies both limits is returned
// unchanged. Opaque images are re-encoded as JPEG, images with
// transparency as PNG so alpha survives.
//
// The step is lossy and best-effort: when the size target cannot be met
// within MaxIterations the smallest attempt is returned. Any failure is
// wrapped in ErrCompression and callers may decode data directly instead.
func Compress(ctx context.Context, data []byte, opts CompressOptions) ([]byte, error) {
	opts = opts.withDefaults()
	opts.progress(0)

	img, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCompression, err)
	}
	limit := opts.maxBytes()
	oversized := img.Width() > opts.MaxDimension || img.Height() > opts.MaxDimension
	if !oversized && len(data) <= limit {
		opts.progress(100)
		return data, nil
	}

	current := Fit(img, opts.MaxDimension, InterpolationArea)
	opaque := current.Opaque()
	quality := float64(opts.InitialQuality)

	var best []byte
	for i := 0; i < opts.MaxIterations; i++ {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompression, err)
		}

		out, err := encodeCompressed(current, opaque, int(quality))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCompression, err)
		}
		if best == nil || len(out) < len(best) {
			best = out
		}
		opts.progress((i + 1) * 100 / opts.MaxIterations)
		if len(out) <= limit {
			break
		}

		w := int(float64(current.Width()) * compressStep)
		h := int(float64(current.Height()) * compressStep)
		if w < 1 || h < 1 {
			break
		}
		current = Resize(current, w, h, InterpolationArea)
		quality = max(quality*compressStep, minQuality)
	}
	opts.progress(100)

	// Re-encoding only paid off if it shrank the file or was needed to
	// bound the dimensions.
	if !oversized && len(best) >= len(data) {
		return data, nil
	}
	return best, nil
}

func encodeCompressed(img *NRGBAImage, opaque bool, quality int) ([]byte, error) {
	var buf bytes.Buffer
	var err error
	if opaque {
		err = jpeg.Encode(&buf, img.NRGBA, &jpeg.Options{Quality: quality})
	} else {
		enc := png.Encoder{CompressionLevel: png.BestCompression}
		err = enc.Encode(&buf, img.NRGBA)
	}
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
