package imageutil

import (
	"bytes"
	"encoding/binary"
	"errors"
	"runtime"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func rawHeader(magic string, w, h uint32) []byte {
	header := make([]byte, rawHeaderSize)
	copy(header, magic)
	binary.LittleEndian.PutUint32(header[4:8], w)
	binary.LittleEndian.PutUint32(header[8:12], h)
	return header
}

func TestRawRoundTripKeepsAlpha(t *testing.T) {
	t.Parallel()

	img := CreateNoiseImage(31, 17)
	var buf bytes.Buffer
	if err := EncodeRaw(&buf, img); err != nil {
		t.Fatalf("EncodeRaw failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte(rawMagic)) {
		t.Fatalf("Expected %q magic, got %q", rawMagic, buf.Bytes()[:4])
	}

	got, err := DecodeRaw(&buf)
	if err != nil {
		t.Fatalf("DecodeRaw failed: %v", err)
	}
	if !bytes.Equal(got.PixelBuffer(), img.PixelBuffer()) {
		t.Error("Decoded pixel buffer differs from the original")
	}
}

func TestRawCompressesFlatImages(t *testing.T) {
	t.Parallel()

	img := CreateSolidImage(256, 256, RGB{R: 10, G: 20, B: 30})
	data, err := EncodeBytes(img, FormatRaw)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if len(data) >= len(img.Pix)/10 {
		t.Errorf("Expected a flat image to compress well, got %d bytes for %d", len(data), len(img.Pix))
	}
}

func TestDecodeRawRejectsBadHeaders(t *testing.T) {
	t.Parallel()

	var valid bytes.Buffer
	if err := EncodeRaw(&valid, CreateGradientImage(4, 4)); err != nil {
		t.Fatalf("EncodeRaw failed: %v", err)
	}
	payload := valid.Bytes()[rawHeaderSize:]

	cases := []struct {
		name string
		data []byte
	}{
		{"short header", []byte("PXLZ\x04\x00")},
		{"bad magic", append(rawHeader("NOPE", 4, 4), payload...)},
		{"zero width", append(rawHeader(rawMagic, 0, 4), payload...)},
		{"huge height", append(rawHeader(rawMagic, 4, rawMaxDimension+1), payload...)},
		{"dimension mismatch", append(rawHeader(rawMagic, 5, 4), payload...)},
		{"corrupt payload", append(rawHeader(rawMagic, 4, 4), 1, 2, 3, 4)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeRaw(bytes.NewReader(tc.data)); err == nil {
				t.Error("Expected an error")
			}
		})
	}
}

func TestDecodeRawBoundsAllocation(t *testing.T) {
	enc := zstdEncPool.Get().(*zstd.Encoder)
	tiny := enc.EncodeAll([]byte{1, 2, 3, 4}, nil)
	bomb := enc.EncodeAll(make([]byte, 1<<20), nil)
	zstdEncPool.Put(enc)

	// A frame declaring 4 GiB of content followed by one 4-byte RLE block.
	declared := []byte{
		0x28, 0xb5, 0x2f, 0xfd, // magic
		0xe0,                   // single segment, 8-byte content size
		0, 0, 0, 0, 1, 0, 0, 0, // 1 << 32
		0x23, 0, 0, 0x07, // last RLE block of 4 bytes
	}

	cases := []struct {
		name string
		data []byte
	}{
		{"max header, tiny payload", append(rawHeader(rawMagic, rawMaxDimension, rawMaxDimension), tiny...)},
		{"max header, frame claims the full size", append(rawHeader(rawMagic, rawMaxDimension, rawMaxDimension), declared...)},
		{"small header, oversized frame", append(rawHeader(rawMagic, 64, 64), bomb...)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var before, after runtime.MemStats
			runtime.ReadMemStats(&before)
			_, _, err := Decode(tc.data)
			runtime.ReadMemStats(&after)

			if !errors.Is(err, ErrDecode) {
				t.Errorf("Expected ErrDecode, got %v", err)
			}
			if allocated := after.TotalAlloc - before.TotalAlloc; allocated > 64<<20 {
				t.Errorf("Expected bounded allocation, got %d MiB", allocated>>20)
			}
		})
	}
}

func TestEncodeRawRejectsOversizedImages(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	wide := NewNRGBAImage(rawMaxDimension+1, 1)
	if err := EncodeRaw(&buf, wide); err == nil {
		t.Error("Expected an error for a side longer than the container allows")
	}
	if buf.Len() != 0 {
		t.Errorf("Expected nothing written, got %d bytes", buf.Len())
	}
	if _, err := EncodeBytes(wide, FormatRaw); err == nil {
		t.Error("Expected EncodeBytes to fail as well")
	}

	edge := NewNRGBAImage(rawMaxDimension, 1)
	data, err := EncodeBytes(edge, FormatRaw)
	if err != nil {
		t.Fatalf("Encode at the limit failed: %v", err)
	}
	got, _, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode at the limit failed: %v", err)
	}
	if got.Width() != rawMaxDimension || got.Height() != 1 {
		t.Errorf("Expected %dx1, got %dx%d", rawMaxDimension, got.Width(), got.Height())
	}
}
