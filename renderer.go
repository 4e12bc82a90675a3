package pixelate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/wbrown/pixelate/imageutil"
)

// Renderer holds the state of one pixelation session: the current source
// image, the configured block size and the current result. Loading a new
// image or pixelating again replaces the previous value; a failed call
// leaves the previous state in place.
//
// A Renderer is safe for concurrent use.
type Renderer struct {
	// Configuration options
	blockSize   int
	compress    bool
	compression imageutil.CompressOptions
	format      imageutil.Format
	onProgress  func(int)

	mu      sync.Mutex
	image   *imageutil.NRGBAImage
	result  *Result
	pending int
	loadSeq uint64

	// Stats
	loadTime     time.Duration
	pixelateTime time.Duration
}

// Result is the output of Renderer.Pixelate.
type Result struct {
	Image     *imageutil.NRGBAImage
	BlockSize int
}

// RendererOption is a functional option for configuring a Renderer.
type RendererOption func(*Renderer)

// NewRenderer creates a new Renderer with the given options.
// Default values: BlockSize=10, compression on with
// imageutil.DefaultCompressOptions, Format=PNG.
func NewRenderer(opts ...RendererOption) *Renderer {
	r := &Renderer{
		blockSize:   DefaultBlockSize,
		compress:    true,
		compression: imageutil.DefaultCompressOptions(),
		format:      imageutil.FormatPNG,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// WithBlockSize sets the block size, clamped to [MinBlockSize, MaxBlockSize].
func WithBlockSize(n int) RendererOption {
	return func(r *Renderer) {
		r.blockSize = ClampBlockSize(n)
	}
}

// WithCompression enables the compression pre-step with the given options.
func WithCompression(opts imageutil.CompressOptions) RendererOption {
	return func(r *Renderer) {
		r.compress = true
		r.compression = opts
	}
}

// WithoutCompression decodes loaded bytes directly.
func WithoutCompression() RendererOption {
	return func(r *Renderer) {
		r.compress = false
	}
}

// WithFormat sets the export format.
func WithFormat(f imageutil.Format) RendererOption {
	return func(r *Renderer) {
		r.format = f
	}
}

// WithProgress registers a callback for load progress (0-100).
func WithProgress(fn func(percent int)) RendererOption {
	return func(r *Renderer) {
		r.onProgress = fn
	}
}

// Load compresses (if enabled) and decodes data, making it the current
// image. The previous result is discarded on success. On failure the
// previous image and result stay current.
//
// A compression failure is not fatal: the raw bytes are decoded instead.
// When a later load starts before this one finishes, this one is dropped
// and ErrLoadSuperseded is returned.
func (r *Renderer) Load(ctx context.Context, data []byte) error {
	return r.load(ctx, data, r.nextLoad())
}

// nextLoad numbers a load in call order.
func (r *Renderer) nextLoad() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.loadSeq++
	return r.loadSeq
}

func (r *Renderer) load(ctx context.Context, data []byte, seq uint64) error {
	start := time.Now()
	img, err := r.decode(ctx, data)
	if err != nil {
		Logger().Warn("load failed", "error", err)
		return err
	}

	r.mu.Lock()
	if seq != r.loadSeq {
		r.mu.Unlock()
		Logger().Debug("dropping superseded load", "load", seq)
		return ErrLoadSuperseded
	}
	r.image = img
	r.result = nil
	r.loadTime = time.Since(start)
	r.mu.Unlock()

	Logger().Info("image loaded",
		"width", img.Width(), "height", img.Height(),
		"elapsed", time.Since(start))
	return nil
}

// LoadFile reads path and loads it.
func (r *Renderer) LoadFile(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read image: %w", err)
	}
	return r.Load(ctx, data)
}

func (r *Renderer) decode(ctx context.Context, data []byte) (*imageutil.NRGBAImage, error) {
	r.progress(0)
	if r.compress {
		opts := r.compression
		opts.OnProgress = r.onProgress
		compressed, err := imageutil.Compress(ctx, data, opts)
		switch {
		case err == nil:
			Logger().Debug("compressed input",
				"before", len(data), "after", len(compressed))
			data = compressed
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return nil, err
		default:
			Logger().Warn("compression failed, decoding original", "error", err)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	img, format, err := imageutil.Decode(data)
	if err != nil {
		return nil, err
	}
	Logger().Debug("decoded", "format", format)
	r.progress(100)
	return img, nil
}

func (r *Renderer) progress(p int) {
	if r.onProgress != nil {
		r.onProgress(p)
	}
}

// LoadTask is a pending asynchronous load.
type LoadTask struct {
	done chan struct{}
	err  error
}

// Done is closed when the load has finished.
func (t *LoadTask) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the load finishes and returns its error.
func (t *LoadTask) Wait() error {
	<-t.done
	return t.err
}

// LoadAsync runs Load on a new goroutine. Until the task finishes,
// Pixelate returns ErrLoadInProgress. Loads take effect in call order: a
// task overtaken by a later call finishes with ErrLoadSuperseded.
func (r *Renderer) LoadAsync(ctx context.Context, data []byte) *LoadTask {
	t := &LoadTask{done: make(chan struct{})}

	r.mu.Lock()
	r.pending++
	r.loadSeq++
	seq := r.loadSeq
	r.mu.Unlock()

	go func() {
		defer close(t.done)
		t.err = r.load(ctx, data, seq)

		r.mu.Lock()
		r.pending--
		r.mu.Unlock()
	}()
	return t
}

// SetBlockSize sets the block size used by the next Pixelate call.
func (r *Renderer) SetBlockSize(n int) error {
	if err := ValidateBlockSize(n); err != nil {
		return err
	}
	r.mu.Lock()
	r.blockSize = n
	r.mu.Unlock()
	return nil
}

// BlockSize returns the configured block size.
func (r *Renderer) BlockSize() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.blockSize
}

// Image returns the current source image, or nil.
func (r *Renderer) Image() *imageutil.NRGBAImage {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.image
}

// Result returns the current result, or nil.
func (r *Renderer) Result() *Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.result
}

// Pixelate pixelates the current image with the current block size and
// makes the output the current result. Asking again for the block size
// of the current result returns it without recomputing.
func (r *Renderer) Pixelate() (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.pending > 0 {
		return nil, ErrLoadInProgress
	}
	if r.image == nil {
		return nil, ErrNoImage
	}
	if r.result != nil && r.result.BlockSize == r.blockSize {
		return r.result, nil
	}

	start := time.Now()
	out, err := PixelateImage(r.image, r.blockSize)
	if err != nil {
		return nil, err
	}
	r.pixelateTime = time.Since(start)
	r.result = &Result{Image: out, BlockSize: r.blockSize}

	Logger().Debug("pixelated",
		slog.Int("blockSize", r.blockSize),
		slog.Duration("elapsed", r.pixelateTime))
	return r.result, nil
}

// Export encodes the current result in the configured format.
func (r *Renderer) Export(w io.Writer) error {
	return r.ExportAs(w, r.format)
}

// ExportAs encodes the current result in format f.
func (r *Renderer) ExportAs(w io.Writer, f imageutil.Format) error {
	res := r.Result()
	if res == nil {
		return ErrNoResult
	}
	return imageutil.Encode(w, res.Image, f)
}

// Save writes the current result to path. The format comes from the
// path's extension; paths without a known extension use the configured
// format.
func (r *Renderer) Save(path string) error {
	res := r.Result()
	if res == nil {
		return ErrNoResult
	}
	f := r.format
	if known, err := imageutil.ParseFormat(filepath.Ext(path)); err == nil {
		f = known
	}
	return imageutil.SaveImageAs(res.Image, path, f)
}

// Timings returns the duration of the last successful load and pixelation.
func (r *Renderer) Timings() (load, pixelate time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadTime, r.pixelateTime
}
