package pixelate

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"sync"

	"github.com/golang/freetype"
	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/wbrown/pixelate/imageutil"
)

// SheetOptions controls ContactSheet layout.
type SheetOptions struct {
	// CellWidth is the width of each preview in pixels. Height follows
	// the source aspect ratio.
	CellWidth int
	// Columns is the number of previews per row.
	Columns int
	// Padding surrounds every cell.
	Padding int
	// FontSize is the label size in points at 72 DPI.
	FontSize float64
}

// DefaultSheetOptions returns the layout used when fields are zero.
func DefaultSheetOptions() SheetOptions {
	return SheetOptions{
		CellWidth: 240,
		Columns:   5,
		Padding:   8,
		FontSize:  14,
	}
}

func (o SheetOptions) withDefaults() SheetOptions {
	d := DefaultSheetOptions()
	if o.CellWidth <= 0 {
		o.CellWidth = d.CellWidth
	}
	if o.Columns <= 0 {
		o.Columns = d.Columns
	}
	if o.Padding < 0 {
		o.Padding = d.Padding
	}
	if o.FontSize <= 0 {
		o.FontSize = d.FontSize
	}
	return o
}

// Cells are at most this many times taller than wide. Taller sources are
// scaled down to fit and centered in the cell.
const maxCellAspect = 2

var (
	labelFontOnce sync.Once
	labelFont     *truetype.Font
	labelFontErr  error
)

func loadLabelFont() (*truetype.Font, error) {
	labelFontOnce.Do(func() {
		labelFont, labelFontErr = freetype.ParseFont(goregular.TTF)
	})
	return labelFont, labelFontErr
}

// ContactSheet pixelates img at each block size and lays the previews out
// in a grid, each captioned with its size ("10px"). An empty sizes slice
// renders every size from MinBlockSize to MaxBlockSize.
func ContactSheet(img *imageutil.NRGBAImage, sizes []int, opts SheetOptions) (*imageutil.NRGBAImage, error) {
	opts = opts.withDefaults()
	if len(sizes) == 0 {
		for n := MinBlockSize; n <= MaxBlockSize; n++ {
			sizes = append(sizes, n)
		}
	}
	for _, n := range sizes {
		if err := ValidateBlockSize(n); err != nil {
			return nil, err
		}
	}
	if img == nil || img.Width() == 0 || img.Height() == 0 {
		return nil, fmt.Errorf("%w: empty image", ErrInvalidParameter)
	}

	ttf, err := loadLabelFont()
	if err != nil {
		return nil, fmt.Errorf("failed to parse label font: %w", err)
	}
	face := truetype.NewFace(ttf, &truetype.Options{
		Size:    opts.FontSize,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	defer face.Close()

	cellW := opts.CellWidth
	previewW, cellH := cellW, max(img.Height()*cellW/img.Width(), 1)
	if cellH > maxCellAspect*cellW {
		cellH = maxCellAspect * cellW
		previewW = max(img.Width()*cellH/img.Height(), 1)
	}
	labelH := face.Metrics().Height.Ceil() + opts.Padding
	slotW := cellW + 2*opts.Padding
	slotH := cellH + labelH + 2*opts.Padding

	cols := min(opts.Columns, len(sizes))
	rows := (len(sizes) + cols - 1) / cols
	sheet := imageutil.NewNRGBAImage(cols*slotW, rows*slotH)
	draw.Draw(sheet.NRGBA, sheet.Bounds(), image.White, image.Point{}, draw.Src)

	ctx := freetype.NewContext()
	ctx.SetDPI(72)
	ctx.SetFont(ttf)
	ctx.SetFontSize(opts.FontSize)
	ctx.SetClip(sheet.Bounds())
	ctx.SetDst(sheet.NRGBA)
	ctx.SetSrc(image.NewUniform(color.Black))
	ctx.SetHinting(font.HintingFull)

	for i, n := range sizes {
		out, err := PixelateImage(img, n)
		if err != nil {
			return nil, err
		}
		preview := imageutil.Resize(out, previewW, cellH, imageutil.InterpolationNearest)

		x0 := (i%cols)*slotW + opts.Padding
		y0 := (i/cols)*slotH + opts.Padding
		px := x0 + (cellW-previewW)/2
		draw.Draw(sheet.NRGBA, image.Rect(px, y0, px+previewW, y0+cellH),
			preview.NRGBA, image.Point{}, draw.Over)

		label := fmt.Sprintf("%dpx", n)
		labelW := font.MeasureString(face, label).Ceil()
		pt := freetype.Pt(x0+(cellW-labelW)/2,
			y0+cellH+opts.Padding+face.Metrics().Ascent.Ceil())
		if _, err := ctx.DrawString(label, pt); err != nil {
			return nil, fmt.Errorf("failed to draw label %q: %w", label, err)
		}
	}

	return sheet, nil
}
