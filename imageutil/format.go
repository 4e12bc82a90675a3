package imageutil

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies an output container.
type Format int

const (
	FormatPNG Format = iota
	FormatJPEG
	FormatGIF
	FormatTIFF
	FormatBMP
	FormatWebP
	// FormatRaw is the zstd-compressed pixel buffer container (.rgbz).
	FormatRaw
)

var formatNames = map[Format]string{
	FormatPNG:  "png",
	FormatJPEG: "jpeg",
	FormatGIF:  "gif",
	FormatTIFF: "tiff",
	FormatBMP:  "bmp",
	FormatWebP: "webp",
	FormatRaw:  "rgbz",
}

var formatExtensions = map[string]Format{
	".png":  FormatPNG,
	".jpg":  FormatJPEG,
	".jpeg": FormatJPEG,
	".gif":  FormatGIF,
	".tif":  FormatTIFF,
	".tiff": FormatTIFF,
	".bmp":  FormatBMP,
	".webp": FormatWebP,
	".rgbz": FormatRaw,
}

func (f Format) String() string {
	if name, ok := formatNames[f]; ok {
		return name
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// Extension returns the canonical file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJPEG:
		return ".jpg"
	case FormatTIFF:
		return ".tiff"
	}
	return "." + f.String()
}

// ParseFormat maps a format name such as "png" or "jpg" to a Format.
func ParseFormat(name string) (Format, error) {
	name = strings.ToLower(strings.TrimPrefix(name, "."))
	if f, ok := formatExtensions["."+name]; ok {
		return f, nil
	}
	return FormatPNG, fmt.Errorf("%w: %q", ErrUnsupportedFormat, name)
}

// FormatFromPath picks a format from the file extension of path.
// Unknown extensions default to PNG.
func FormatFromPath(path string) Format {
	if f, ok := formatExtensions[strings.ToLower(filepath.Ext(path))]; ok {
		return f
	}
	return FormatPNG
}
