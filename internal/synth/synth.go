package synth

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// ErrInvalidConfig is returned for a sample rate or bit depth the pipeline cannot produce.
var ErrInvalidConfig = errors.New("invalid audio configuration")

// NoteEvent is one time slice of a sequence: the tones sounding together
// for Duration seconds. An empty Frequencies set is a rest.
type NoteEvent struct {
	Frequencies []float64 `json:"frequencies"`
	Duration    float64   `json:"duration"`
}

// SampleCount returns the number of samples the event occupies at sampleRate.
func (e NoteEvent) SampleCount(sampleRate int) int {
	n := roundHalfUp(float64(sampleRate) * e.Duration)
	if n < 0 {
		return 0
	}
	return int(n)
}

// Synthesize renders events back to back as mono float samples at sampleRate.
// Each sample is the mean of sin(2πft) over the event's frequencies, with t
// restarting at zero for every event. The result is not clipped.
func Synthesize(events []NoteEvent, sampleRate int) ([]float64, error) {
	return SynthesizeContext(context.Background(), events, sampleRate)
}

// cancelCheckInterval is how many samples are produced between context checks.
const cancelCheckInterval = 4096

// SynthesizeContext is Synthesize, stopping with ctx.Err() once ctx is done.
func SynthesizeContext(ctx context.Context, events []NoteEvent, sampleRate int) ([]float64, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate %d: %w", sampleRate, ErrInvalidConfig)
	}

	total := 0
	for _, e := range events {
		total += e.SampleCount(sampleRate)
	}

	out := make([]float64, 0, total)
	for _, e := range events {
		var err error
		if out, err = appendEvent(ctx, out, e, sampleRate); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func appendEvent(ctx context.Context, dst []float64, e NoteEvent, sampleRate int) ([]float64, error) {
	n := e.SampleCount(sampleRate)
	count := float64(len(e.Frequencies))
	for i := 0; i < n; i++ {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if count == 0 {
			dst = append(dst, 0)
			continue
		}

		t := float64(i) / float64(sampleRate)
		var v float64
		for _, f := range e.Frequencies {
			v += math.Sin(2 * math.Pi * f * t)
		}
		dst = append(dst, v/count)
	}
	return dst, nil
}

// Clip returns a copy of buf with every value clamped to [-1, 1].
func Clip(buf []float64) []float64 {
	out := make([]float64, len(buf))
	for i, v := range buf {
		switch {
		case v > 1:
			out[i] = 1
		case v < -1:
			out[i] = -1
		default:
			out[i] = v
		}
	}
	return out
}

// roundHalfUp rounds .5 towards +Inf so negative halves match the browser
// encoder the 8-bit codes must stay byte-compatible with.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
