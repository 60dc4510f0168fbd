package sequencer

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/tonegrid/internal/metrics"
	"github.com/RenatoCabral2022/tonegrid/internal/model"
	"github.com/RenatoCabral2022/tonegrid/internal/soundcache"
	"github.com/RenatoCabral2022/tonegrid/internal/synth"
	"github.com/RenatoCabral2022/tonegrid/internal/wave"
)

var (
	ErrInvalidEvent    = errors.New("invalid note event")
	ErrInvalidVelocity = errors.New("velocity must be a positive number of steps per second")
	ErrTooLong         = errors.New("sequence exceeds the maximum render length")
	ErrTooManySteps    = errors.New("composition has more steps than the grid")
	ErrUnknownNote     = errors.New("frequency is not a grid note")
)

// MaxFrequencies caps the tones sounding together in one event at the
// number of grid rows.
const MaxFrequencies = 24

// Options configures a Sequencer.
type Options struct {
	Format            wave.Format
	MaxRenderSeconds  float64
	GridSteps         int
	RenderConcurrency int
}

// Sequencer chains synthesis, clipping, quantization and wave encoding,
// and keeps per-note sounds in a cache.
type Sequencer struct {
	opts   Options
	enc    *wave.Encoder
	cache  *soundcache.Cache
	logger *zap.Logger
	sem    chan struct{}
}

// New creates a Sequencer. The encoder and cache are shared, not copied.
func New(opts Options, enc *wave.Encoder, cache *soundcache.Cache, logger *zap.Logger) (*Sequencer, error) {
	if err := opts.Format.Validate(); err != nil {
		return nil, err
	}
	if opts.RenderConcurrency <= 0 {
		opts.RenderConcurrency = 1
	}
	return &Sequencer{
		opts:   opts,
		enc:    enc,
		cache:  cache,
		logger: logger,
		sem:    make(chan struct{}, opts.RenderConcurrency),
	}, nil
}

// Format returns the wave format of every render.
func (s *Sequencer) Format() wave.Format {
	return s.opts.Format
}

// Render turns events into a playable wave file.
func (s *Sequencer) Render(ctx context.Context, events []synth.NoteEvent) (*wave.EncodedWave, error) {
	if err := s.validate(events); err != nil {
		metrics.RendersTotal.WithLabelValues("rejected").Inc()
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		metrics.RendersTotal.WithLabelValues("cancelled").Inc()
		return nil, err
	}

	metrics.RendersInFlight.Inc()
	defer metrics.RendersInFlight.Dec()

	w, err := s.render(ctx, events)
	if err != nil {
		if ctx.Err() != nil {
			metrics.RendersTotal.WithLabelValues("cancelled").Inc()
		} else {
			metrics.RendersTotal.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	metrics.RendersTotal.WithLabelValues("ok").Inc()
	return w, nil
}

func (s *Sequencer) render(ctx context.Context, events []synth.NoteEvent) (*wave.EncodedWave, error) {
	f := s.opts.Format

	start := time.Now()
	samples, err := synth.SynthesizeContext(ctx, events, f.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	observeStage("synthesize", start)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	codes, err := synth.Quantize(synth.Clip(samples), f.BitsPerSample)
	if err != nil {
		return nil, fmt.Errorf("quantize: %w", err)
	}
	observeStage("quantize", start)

	start = time.Now()
	w, err := s.enc.Encode(wave.Interleave(codes, f.NumChannels), f)
	if err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}
	observeStage("encode", start)

	metrics.SamplesRenderedTotal.Add(float64(len(samples)))
	metrics.BytesEncodedTotal.Add(float64(len(w.Bytes)))
	return w, nil
}

// Sound renders a single event, serving repeats from the cache.
func (s *Sequencer) Sound(ctx context.Context, e synth.NoteEvent) (*wave.EncodedWave, error) {
	key := soundcache.KeyFor(e, s.opts.Format)
	if w, ok := s.cache.Get(key); ok {
		return w, nil
	}

	w, err := s.Render(ctx, []synth.NoteEvent{e})
	if err != nil {
		return nil, err
	}
	s.cache.Put(key, w)
	return w, nil
}

// NoteSound returns the preview sound for one grid frequency.
func (s *Sequencer) NoteSound(ctx context.Context, frequency float64) (*wave.EncodedWave, error) {
	if !IsGridFrequency(frequency) {
		return nil, fmt.Errorf("%v Hz: %w", frequency, ErrUnknownNote)
	}
	return s.Sound(ctx, synth.NoteEvent{Frequencies: []float64{frequency}, Duration: NoteDuration})
}

// ScaleSound renders the demo scale.
func (s *Sequencer) ScaleSound(ctx context.Context) (*wave.EncodedWave, error) {
	return s.Render(ctx, ScaleEvents())
}

// Compose builds a composition from grid columns, each lasting 1/velocity
// seconds and sounding the listed frequencies.
func (s *Sequencer) Compose(steps [][]float64, velocity float64) (model.Composition, error) {
	if velocity <= 0 || math.IsNaN(velocity) || math.IsInf(velocity, 0) {
		return nil, fmt.Errorf("velocity %v: %w", velocity, ErrInvalidVelocity)
	}
	if len(steps) > s.opts.GridSteps {
		return nil, fmt.Errorf("%d steps, grid has %d: %w", len(steps), s.opts.GridSteps, ErrTooManySteps)
	}

	c := make(model.Composition, len(steps))
	for i, freqs := range steps {
		for _, f := range freqs {
			if !validFrequency(f) {
				return nil, fmt.Errorf("step %d frequency %v: %w", i, f, ErrInvalidEvent)
			}
		}
		c[i] = model.Step{Time: 1 / velocity, Frequency: append([]float64(nil), freqs...)}
	}

	if err := s.validate(c.Events()); err != nil {
		return nil, err
	}
	return c, nil
}

// Preload renders the preview sound of every grid note into the cache,
// at most RenderConcurrency at a time.
func (s *Sequencer) Preload(ctx context.Context) error {
	notes := GridNotes()
	start := time.Now()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	for _, n := range notes {
		select {
		case s.sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return ctx.Err()
		}

		wg.Add(1)
		go func(n model.Note) {
			defer wg.Done()
			defer func() { <-s.sem }()

			if _, err := s.NoteSound(ctx, n.Frequency); err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("preload %s (%v Hz): %w", n.Name, n.Frequency, err)
				}
				mu.Unlock()
			}
		}(n)
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	s.logger.Info("note sounds preloaded",
		zap.Int("notes", len(notes)),
		zap.Int("cached", s.cache.Len()),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}

func (s *Sequencer) validate(events []synth.NoteEvent) error {
	var total float64
	for i, e := range events {
		if e.Duration < 0 || math.IsNaN(e.Duration) || math.IsInf(e.Duration, 0) {
			return fmt.Errorf("event %d duration %v: %w", i, e.Duration, ErrInvalidEvent)
		}
		if len(e.Frequencies) > MaxFrequencies {
			return fmt.Errorf("event %d has %d frequencies, limit %d: %w", i, len(e.Frequencies), MaxFrequencies, ErrInvalidEvent)
		}
		for _, f := range e.Frequencies {
			if !validFrequency(f) {
				return fmt.Errorf("event %d frequency %v: %w", i, f, ErrInvalidEvent)
			}
		}
		total += e.Duration
	}
	if total > s.opts.MaxRenderSeconds {
		return fmt.Errorf("%.2fs requested, limit %.2fs: %w", total, s.opts.MaxRenderSeconds, ErrTooLong)
	}
	return nil
}

func validFrequency(f float64) bool {
	return f >= 0 && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func observeStage(stage string, start time.Time) {
	metrics.RenderDuration.WithLabelValues(stage).Observe(float64(time.Since(start).Microseconds()) / 1000)
}
