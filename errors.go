package pixelate

import (
	"errors"

	"github.com/wbrown/pixelate/imageutil"
)

var (
	// ErrInvalidParameter is returned for non-positive dimensions or a
	// block size outside the accepted range.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrBufferLengthMismatch is returned when a pixel buffer's length
	// disagrees with width*height*4.
	ErrBufferLengthMismatch = imageutil.ErrBufferLengthMismatch

	// ErrDecode is returned for malformed image data.
	ErrDecode = imageutil.ErrDecode

	// ErrUnsupportedFormat is returned for data no decoder recognizes.
	ErrUnsupportedFormat = imageutil.ErrUnsupportedFormat

	// ErrCompression is returned when the compression pre-step fails.
	ErrCompression = imageutil.ErrCompression

	// ErrNoImage is returned by Renderer.Pixelate before an image has
	// been loaded.
	ErrNoImage = errors.New("no image loaded")

	// ErrNoResult is returned by Renderer.Export before Pixelate has
	// produced a result.
	ErrNoResult = errors.New("no pixelated result")

	// ErrLoadInProgress is returned by Renderer.Pixelate while an
	// asynchronous load has not finished.
	ErrLoadInProgress = errors.New("image load in progress")

	// ErrLoadSuperseded is returned by a load that finished after a
	// later load was started. Its image is discarded.
	ErrLoadSuperseded = errors.New("image load superseded by a later load")
)
