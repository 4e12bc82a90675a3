package imageutil

import "errors"

var (
	// ErrUnsupportedFormat is returned when no registered decoder or
	// encoder handles the data or the requested format.
	ErrUnsupportedFormat = errors.New("unsupported image format")

	// ErrDecode is returned when the format is known but the data is
	// malformed.
	ErrDecode = errors.New("failed to decode image")

	// ErrCompression is returned when the best-effort compression step
	// fails. Callers can still decode the original bytes.
	ErrCompression = errors.New("image compression failed")

	// ErrBufferLengthMismatch is returned when a pixel buffer's length
	// disagrees with width*height*4.
	ErrBufferLengthMismatch = errors.New("pixel buffer length mismatch")
)
