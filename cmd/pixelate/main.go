package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/wbrown/pixelate"
	"github.com/wbrown/pixelate/imageutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func main() {
	inputFile := flag.String("input", "",
		"Path to the input image file (required)")
	outputFile := flag.String("output", pixelate.DefaultOutputName,
		"Path to save the pixelated image")
	blockSize := flag.Int("blocksize", pixelate.DefaultBlockSize,
		fmt.Sprintf("Block size in pixels (%d-%d)",
			pixelate.MinBlockSize, pixelate.MaxBlockSize))
	formatName := flag.String("format", "",
		"Output format: png, jpeg, gif, tiff, bmp, webp, rgbz "+
			"(default: from the output file extension)")
	maxSizeMB := flag.Float64("maxsize", imageutil.DefaultMaxSizeMB,
		"Target size in MB for the compression pre-step")
	maxDim := flag.Int("maxdim", imageutil.DefaultMaxDimension,
		"Longest side in pixels after the compression pre-step")
	noCompress := flag.Bool("nocompress", false,
		"Decode the input as-is, skipping the compression pre-step")
	sheetFile := flag.String("sheet", "",
		"Also write a contact sheet of every block size to this path")
	previewCols := flag.Int("preview", 0,
		"Print the result to the terminal at most this many columns wide (0 disables)")
	verbose := flag.Bool("verbose", false,
		"Enable debug logging")
	flag.Parse()

	if *inputFile == "" {
		fmt.Println("Please provide the image using the -input flag")
		flag.PrintDefaults()
		os.Exit(1)
	}
	if err := pixelate.ValidateBlockSize(*blockSize); err != nil {
		fmt.Printf("Invalid -blocksize: %v\n", err)
		os.Exit(1)
	}

	format := imageutil.FormatFromPath(*outputFile)
	if *formatName != "" {
		f, err := imageutil.ParseFormat(*formatName)
		if err != nil {
			fmt.Printf("Invalid -format: %v\n", err)
			os.Exit(1)
		}
		format = f
	}

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	pixelate.SetLogger(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level})))

	opts := []pixelate.RendererOption{
		pixelate.WithBlockSize(*blockSize),
		pixelate.WithFormat(format),
		pixelate.WithProgress(func(percent int) {
			fmt.Fprintf(os.Stderr, "\rLoading image... %3d%%", percent)
			if percent == 100 {
				fmt.Fprintln(os.Stderr)
			}
		}),
	}
	if *noCompress {
		opts = append(opts, pixelate.WithoutCompression())
	} else {
		opts = append(opts, pixelate.WithCompression(imageutil.CompressOptions{
			MaxSizeMB:    *maxSizeMB,
			MaxDimension: *maxDim,
		}))
	}
	r := pixelate.NewRenderer(opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	data, err := os.ReadFile(*inputFile)
	if err != nil {
		fmt.Printf("Error reading image: %v\n", err)
		os.Exit(1)
	}
	if err := r.LoadAsync(ctx, data).Wait(); err != nil {
		fmt.Printf("Error loading image: %v\n", err)
		os.Exit(1)
	}

	result, err := r.Pixelate()
	if err != nil {
		fmt.Printf("Error pixelating image: %v\n", err)
		os.Exit(1)
	}

	// Encode fully in memory so a failure never leaves a partial file.
	var out bytes.Buffer
	if err := r.Export(&out); err != nil {
		fmt.Printf("Error encoding %s: %v\n", format, err)
		os.Exit(1)
	}
	if err := os.WriteFile(*outputFile, out.Bytes(), 0644); err != nil {
		fmt.Printf("Error writing to file: %v\n", err)
		os.Exit(1)
	}

	p := message.NewPrinter(language.English)
	loadTime, pixelateTime := r.Timings()
	img := result.Image
	p.Printf("Image: %d x %d (%d pixels)\n",
		img.Width(), img.Height(), img.Width()*img.Height())
	p.Printf("Block size: %dpx, blocks: %d\n", result.BlockSize,
		len(pixelate.BlockRects(img.Width(), img.Height(), result.BlockSize)))
	p.Printf("Output written to %s (%s, %d bytes)\n", *outputFile, format, out.Len())
	fmt.Printf("Load time: %v\n", loadTime)
	fmt.Printf("Pixelation time: %v\n", pixelateTime)

	if *previewCols > 0 {
		preview, err := pixelate.TerminalPreview(img, *previewCols)
		if err != nil {
			fmt.Printf("Error rendering preview: %v\n", err)
			os.Exit(1)
		}
		fmt.Print(preview)
	}

	if *sheetFile != "" {
		sheet, err := pixelate.ContactSheet(r.Image(), nil, pixelate.SheetOptions{})
		if err != nil {
			fmt.Printf("Error rendering contact sheet: %v\n", err)
			os.Exit(1)
		}
		if err := imageutil.SaveImage(sheet, *sheetFile); err != nil {
			fmt.Printf("Error writing contact sheet: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Contact sheet written to %s\n", *sheetFile)
	}
}
