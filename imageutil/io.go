package imageutil

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"

	"github.com/disintegration/imaging"
	"github.com/soniakeys/quant/median"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	// JPEGQuality is the quality used when exporting JPEG files.
	JPEGQuality = 95

	// MaxDecodeDimension bounds either side of a decoded image. Decode
	// checks it against the format header before allocating pixels.
	MaxDecodeDimension = 1 << 15
)

// fallbackDecoder is consulted when no Go decoder recognizes the data.
// It is set by optional backends such as the OpenCV one.
var fallbackDecoder func(data []byte) (image.Image, error)

// Decode decodes image bytes into a tight NRGBAImage and reports the
// detected format name. EXIF orientation is applied to JPEG input.
// Supports PNG, JPEG, GIF (first frame), TIFF, BMP, WebP and rgbz.
func Decode(data []byte) (*NRGBAImage, string, error) {
	if len(data) == 0 {
		return nil, "", fmt.Errorf("%w: empty input", ErrUnsupportedFormat)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		if fallbackDecoder == nil {
			return nil, "", ErrUnsupportedFormat
		}
		img, ferr := fallbackDecoder(data)
		if ferr != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrUnsupportedFormat, ferr)
		}
		return NRGBAImageFromImage(img), "opencv", nil
	}
	if err != nil {
		return nil, format, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if cfg.Width > MaxDecodeDimension || cfg.Height > MaxDecodeDimension {
		return nil, format, fmt.Errorf("%w: %dx%d exceeds %d pixels per side",
			ErrDecode, cfg.Width, cfg.Height, MaxDecodeDimension)
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, format, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return NRGBAImageFromImage(img), format, nil
}

// LoadImage loads an image from the specified path.
func LoadImage(path string) (*NRGBAImage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	img, _, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case FormatPNG:
		return png.Encode(w, img)
	case FormatJPEG:
		return jpeg.Encode(w, img, &jpeg.Options{Quality: JPEGQuality})
	case FormatGIF:
		// Median cut palette, drawn without error diffusion so flat
		// blocks stay flat.
		return gif.Encode(w, img, &gif.Options{
			NumColors: 256,
			Quantizer: median.Quantizer(256),
			Drawer:    draw.Src,
		})
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
	case FormatBMP:
		return bmp.Encode(w, img)
	case FormatWebP:
		return encodeWebP(w, img)
	case FormatRaw:
		return EncodeRaw(w, NRGBAImageFromImage(img))
	}
	return fmt.Errorf("%w: %v", ErrUnsupportedFormat, f)
}

// EncodeBytes encodes img into memory.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SaveImage saves an image to the specified path.
// Format is determined by file extension, defaulting to PNG.
func SaveImage(img image.Image, path string) error {
	return SaveImageAs(img, path, FormatFromPath(path))
}

// SaveImageAs saves an image to path in an explicit format. The image is
// encoded in memory first so a failed encode never leaves a partial file.
func SaveImageAs(img image.Image, path string, f Format) error {
	data, err := EncodeBytes(img, f)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", f, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	return nil
}
