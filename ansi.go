package pixelate

import (
	"fmt"
	"strings"

	"github.com/wbrown/pixelate/imageutil"
)

const (
	// ESC starts an ANSI control sequence.
	ESC = "\u001b"

	// DefaultPreviewColumns is the terminal width used by TerminalPreview
	// when none is given.
	DefaultPreviewColumns = 80

	upperHalfBlock = "▀"
	lowerHalfBlock = "▄"

	// Pixels less opaque than this show the terminal background.
	previewAlphaCutoff = 128
)

// ansiCell is one terminal character covering two vertically stacked
// pixels.
type ansiCell struct {
	fg, bg string
	glyph  string
}

func trueColor(layer int, c imageutil.RGB) string {
	return fmt.Sprintf("%d;2;%d;%d;%d", layer, c.R, c.G, c.B)
}

// newANSICell picks the glyph and colors for a top/bottom pixel pair.
// Transparent halves fall back to the default background (49).
func newANSICell(top, bottom imageutil.RGB, topOpaque, bottomOpaque bool) ansiCell {
	switch {
	case topOpaque && bottomOpaque:
		return ansiCell{trueColor(38, top), trueColor(48, bottom), upperHalfBlock}
	case topOpaque:
		return ansiCell{trueColor(38, top), "49", upperHalfBlock}
	case bottomOpaque:
		return ansiCell{trueColor(38, bottom), "49", lowerHalfBlock}
	}
	return ansiCell{"39", "49", " "}
}

// formatANSICode writes the select-graphic-rendition sequence for fg and
// bg.
func formatANSICode(sb *strings.Builder, fg, bg string) {
	sb.WriteString(ESC)
	sb.WriteByte('[')
	sb.WriteString(fg)
	sb.WriteByte(';')
	sb.WriteString(bg)
	sb.WriteByte('m')
}

// previewPixels returns the scaled pixel size of a preview at most cols
// wide.
func previewPixels(width, height, cols int) (int, int) {
	if cols <= 0 {
		cols = DefaultPreviewColumns
	}
	if width <= cols {
		return width, height
	}
	return cols, max(height*cols/width, 1)
}

// PreviewSize returns the character grid TerminalPreview produces for a
// width x height image: at most cols columns, and one row per two pixel
// rows after scaling.
func PreviewSize(width, height, cols int) (int, int) {
	w, h := previewPixels(width, height, cols)
	return w, (h + 1) / 2
}

// TerminalPreview renders img as 24-bit color ANSI text using half block
// characters, so each character shows two pixels. The image is scaled
// with nearest-neighbor sampling to at most cols characters wide, which
// keeps block edges hard. Runs of cells with the same colors share one
// escape sequence, and every line ends with a reset.
func TerminalPreview(img *imageutil.NRGBAImage, cols int) (string, error) {
	if img == nil || img.Width() == 0 || img.Height() == 0 {
		return "", fmt.Errorf("%w: empty image", ErrInvalidParameter)
	}
	w, h := previewPixels(img.Width(), img.Height(), cols)
	scaled := img
	if w != img.Width() || h != img.Height() {
		scaled = imageutil.Resize(img, w, h, imageutil.InterpolationNearest)
	}

	var sb strings.Builder
	for y := 0; y < h; y += 2 {
		var current ansiCell
		for x := 0; x < w; x++ {
			top := scaled.GetRGB(x, y)
			topOpaque := scaled.Alpha(x, y) >= previewAlphaCutoff
			var bottom imageutil.RGB
			var bottomOpaque bool
			if y+1 < h {
				bottom = scaled.GetRGB(x, y+1)
				bottomOpaque = scaled.Alpha(x, y+1) >= previewAlphaCutoff
			}

			cell := newANSICell(top, bottom, topOpaque, bottomOpaque)
			if x == 0 || cell.fg != current.fg || cell.bg != current.bg {
				formatANSICode(&sb, cell.fg, cell.bg)
			}
			sb.WriteString(cell.glyph)
			current = cell
		}
		// Reset colors at the end of each line
		sb.WriteString(ESC + "[0m\n")
	}
	return sb.String(), nil
}
