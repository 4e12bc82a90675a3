package imageutil

import (
	"encoding/binary"
	"fmt"
	"image"
	"image/color"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"
)

// The rgbz container stores a pixel buffer losslessly:
//
//	4 bytes: magic "PXLZ"
//	4 bytes: width (uint32 little-endian)
//	4 bytes: height (uint32 little-endian)
//	rest:    zstd frame holding width*height*4 RGBA bytes
const (
	rawMagic      = "PXLZ"
	rawHeaderSize = 12

	// Upper bound on either side of a raw image.
	rawMaxDimension = MaxDecodeDimension

	// A zstd block holds at most 128 KiB and costs at least 4 bytes (an
	// RLE block), so no frame expands by more than this factor.
	zstdMaxRatio = 1 << 15
)

func init() {
	image.RegisterFormat("rgbz", rawMagic, decodeRawImage, decodeRawConfig)
}

var zstdEncPool = sync.Pool{
	New: func() any {
		enc, err := zstd.NewWriter(nil,
			zstd.WithEncoderConcurrency(1),
			zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
			zstd.WithLowerEncoderMem(true),
		)
		if err != nil {
			panic(err)
		}
		return enc
	},
}

var zstdDecPool = sync.Pool{
	New: func() any {
		dec, err := zstd.NewReader(nil,
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
			zstd.WithDecodeAllCapLimit(true),
		)
		if err != nil {
			panic(err)
		}
		return dec
	},
}

// EncodeRaw writes img as an rgbz container. Sides longer than
// MaxDecodeDimension are refused since DecodeRaw would reject them.
func EncodeRaw(w io.Writer, img *NRGBAImage) error {
	if img.Width() <= 0 || img.Height() <= 0 ||
		img.Width() > rawMaxDimension || img.Height() > rawMaxDimension {
		return fmt.Errorf("rgbz: cannot store %dx%d image, sides must be in [1, %d]",
			img.Width(), img.Height(), rawMaxDimension)
	}
	var header [rawHeaderSize]byte
	copy(header[:4], rawMagic)
	binary.LittleEndian.PutUint32(header[4:8], uint32(img.Width()))
	binary.LittleEndian.PutUint32(header[8:12], uint32(img.Height()))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}

	enc := zstdEncPool.Get().(*zstd.Encoder)
	payload := enc.EncodeAll(img.PixelBuffer(), nil)
	zstdEncPool.Put(enc)

	_, err := w.Write(payload)
	return err
}

// DecodeRaw reads an rgbz container.
func DecodeRaw(r io.Reader) (*NRGBAImage, error) {
	cfg, err := decodeRawConfig(r)
	if err != nil {
		return nil, err
	}
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	want := cfg.Width * cfg.Height * 4
	if err := checkRawPayload(payload, want); err != nil {
		return nil, err
	}

	// The destination capacity is the decode limit, so a frame can never
	// grow past the declared pixel buffer.
	dec := zstdDecPool.Get().(*zstd.Decoder)
	buf, err := dec.DecodeAll(payload, make([]byte, 0, want))
	zstdDecPool.Put(dec)
	if err != nil {
		return nil, fmt.Errorf("rgbz payload: %w", err)
	}
	return FromPixelBuffer(buf, cfg.Width, cfg.Height)
}

// checkRawPayload verifies the zstd frame header before anything is
// allocated for the pixels: the frame must declare exactly want bytes, and
// want must be reachable from a payload of this length.
func checkRawPayload(payload []byte, want int) error {
	var fh zstd.Header
	if err := fh.Decode(payload); err != nil {
		return fmt.Errorf("rgbz payload: %w", err)
	}
	if !fh.HasFCS || fh.FrameContentSize != uint64(want) {
		return fmt.Errorf("rgbz payload: frame holds %d bytes, header needs %d",
			fh.FrameContentSize, want)
	}
	if uint64(want) > uint64(len(payload))*zstdMaxRatio {
		return fmt.Errorf("rgbz payload: %d bytes cannot expand to %d", len(payload), want)
	}
	return nil
}

func decodeRawImage(r io.Reader) (image.Image, error) {
	img, err := DecodeRaw(r)
	if err != nil {
		return nil, err
	}
	return img.NRGBA, nil
}

func decodeRawConfig(r io.Reader) (image.Config, error) {
	var header [rawHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return image.Config{}, fmt.Errorf("rgbz header: %w", err)
	}
	if string(header[:4]) != rawMagic {
		return image.Config{}, fmt.Errorf("rgbz header: bad magic %q", header[:4])
	}
	w := binary.LittleEndian.Uint32(header[4:8])
	h := binary.LittleEndian.Uint32(header[8:12])
	if w == 0 || h == 0 || w > rawMaxDimension || h > rawMaxDimension {
		return image.Config{}, fmt.Errorf("rgbz header: invalid dimensions %dx%d", w, h)
	}
	return image.Config{
		ColorModel: color.NRGBAModel,
		Width:      int(w),
		Height:     int(h),
	}, nil
}
