package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/tonegrid/internal/fastb64"
	"github.com/RenatoCabral2022/tonegrid/internal/sequencer"
	"github.com/RenatoCabral2022/tonegrid/internal/soundcache"
	"github.com/RenatoCabral2022/tonegrid/internal/synth"
	"github.com/RenatoCabral2022/tonegrid/internal/wave"
)

var (
	eventsPath  string
	outputPath  string
	inspectPath string
	bits        int
	rate        int
	channels    int
	scale       bool
	printURI    bool
)

func init() {
	flag.StringVar(&eventsPath, "events", "", "JSON file with an array of {\"frequencies\":[Hz..],\"duration\":s}")
	flag.StringVar(&outputPath, "o", "out.wav", "Output wave file")
	flag.StringVar(&inspectPath, "inspect", "", "Print the header of a wave file and exit")
	flag.IntVar(&bits, "bits", 8, "Bits per sample (8 or 16)")
	flag.IntVar(&rate, "rate", 44100, "Sample rate in Hz")
	flag.IntVar(&channels, "channels", 1, "Number of channels")
	flag.BoolVar(&scale, "scale", false, "Render the demo scale instead of an events file")
	flag.BoolVar(&printURI, "uri", false, "Print the data URI instead of writing a file")
}

func main() {
	flag.Parse()

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	if inspectPath != "" {
		if err := inspect(inspectPath); err != nil {
			logger.Fatal("inspect failed", zap.String("file", inspectPath), zap.Error(err))
		}
		return
	}

	var events []synth.NoteEvent
	switch {
	case scale:
		events = sequencer.ScaleEvents()
	case eventsPath != "":
		data, err := os.ReadFile(eventsPath)
		if err != nil {
			logger.Fatal("read events", zap.Error(err))
		}
		if err := json.Unmarshal(data, &events); err != nil {
			logger.Fatal("decode events", zap.String("file", eventsPath), zap.Error(err))
		}
	default:
		fmt.Fprintln(os.Stderr, "Error: -events or -scale is required")
		flag.Usage()
		os.Exit(1)
	}

	seq, err := sequencer.New(sequencer.Options{
		Format:            wave.Format{BitsPerSample: bits, NumChannels: channels, SampleRate: rate},
		MaxRenderSeconds:  math.MaxFloat64,
		GridSteps:         len(events),
		RenderConcurrency: 1,
	}, wave.NewEncoder(fastb64.NewEncoding()), soundcache.New(0), logger)
	if err != nil {
		logger.Fatal("invalid format", zap.Error(err))
	}

	w, err := seq.Render(context.Background(), events)
	if err != nil {
		logger.Fatal("render failed", zap.Error(err))
	}

	if printURI {
		fmt.Println(w.DataURI())
		return
	}
	if err := os.WriteFile(outputPath, w.Bytes, 0o644); err != nil {
		logger.Fatal("write output", zap.Error(err))
	}
	logger.Info("wrote wave file",
		zap.String("file", outputPath),
		zap.Int("frames", w.Frames()),
		zap.Int("bytes", len(w.Bytes)),
	)
}

func inspect(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	d, err := wave.Decode(data)
	if err != nil {
		return err
	}

	h := d.Header
	fmt.Printf("ChunkID:        %s\n", h.ChunkID[:])
	fmt.Printf("ChunkSize:      %d\n", h.ChunkSize)
	fmt.Printf("Format:         %s\n", h.Format[:])
	fmt.Printf("AudioFormat:    %d\n", h.AudioFormat)
	fmt.Printf("NumChannels:    %d\n", h.NumChannels)
	fmt.Printf("SampleRate:     %d\n", h.SampleRate)
	fmt.Printf("ByteRate:       %d\n", h.ByteRate)
	fmt.Printf("BlockAlign:     %d\n", h.BlockAlign)
	fmt.Printf("BitsPerSample:  %d\n", h.BitsPerSample)
	fmt.Printf("Subchunk2Size:  %d\n", h.Subchunk2Size)
	fmt.Printf("Frames:         %d\n", h.Frames())
	fmt.Printf("Duration:       %.3fs\n", float64(h.Frames())/float64(h.SampleRate))
	return nil
}
