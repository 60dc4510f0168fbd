package sequencer

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/tonegrid/internal/fastb64"
	"github.com/RenatoCabral2022/tonegrid/internal/soundcache"
	"github.com/RenatoCabral2022/tonegrid/internal/synth"
	"github.com/RenatoCabral2022/tonegrid/internal/testutil"
	"github.com/RenatoCabral2022/tonegrid/internal/wave"
)

var testFormat = wave.Format{BitsPerSample: 8, NumChannels: 1, SampleRate: 8000}

func newTestSequencer(t *testing.T, opts Options) *Sequencer {
	t.Helper()
	if opts.Format == (wave.Format{}) {
		opts.Format = testFormat
	}
	if opts.MaxRenderSeconds == 0 {
		opts.MaxRenderSeconds = 60
	}
	if opts.GridSteps == 0 {
		opts.GridSteps = 100
	}
	s, err := New(opts, wave.NewEncoder(fastb64.NewEncoding()), soundcache.New(64), zap.NewNop())
	if err != nil {
		t.Fatalf("new sequencer: %v", err)
	}
	return s
}

func TestNewRejectsInvalidFormat(t *testing.T) {
	_, err := New(Options{Format: wave.Format{BitsPerSample: 24, NumChannels: 1, SampleRate: 8000}},
		wave.NewEncoder(fastb64.NewEncoding()), soundcache.New(1), zap.NewNop())
	if !errors.Is(err, wave.ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestRenderProducesPlayableWave(t *testing.T) {
	s := newTestSequencer(t, Options{})
	w, err := s.Render(context.Background(), []synth.NoteEvent{
		{Frequencies: []float64{440}, Duration: 0.25},
		{Duration: 0.25},
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if w.Frames() != 4000 {
		t.Errorf("expected 4000 frames, got %d", w.Frames())
	}
	if len(w.Bytes) != wave.HeaderSize+4000 {
		t.Errorf("expected %d bytes, got %d", wave.HeaderSize+4000, len(w.Bytes))
	}
	// the rest is silence
	for i, b := range w.Bytes[wave.HeaderSize+2000:] {
		if b != synth.Silence8 {
			t.Fatalf("rest byte %d = %d, want %d", i, b, synth.Silence8)
		}
	}

	uri := w.DataURI()
	if !strings.HasPrefix(uri, wave.DataURIPrefix) {
		t.Fatalf("unexpected data URI prefix: %.40q", uri)
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, wave.DataURIPrefix))
	if err != nil {
		t.Fatalf("decode base64: %v", err)
	}
	d, err := wave.Decode(raw)
	if err != nil {
		t.Fatalf("decode wave: %v", err)
	}
	if d.Header.PCMFormat() != testFormat {
		t.Errorf("unexpected format %+v", d.Header.PCMFormat())
	}
}

func TestRenderStereoDuplicatesMono(t *testing.T) {
	s := newTestSequencer(t, Options{Format: wave.Format{BitsPerSample: 16, NumChannels: 2, SampleRate: 8000}})
	w, err := s.Render(context.Background(), []synth.NoteEvent{{Frequencies: []float64{440}, Duration: 3.0 / 8000}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if w.Frames() != 3 {
		t.Fatalf("expected 3 frames, got %d", w.Frames())
	}
	payload := w.Bytes[wave.HeaderSize:]
	for frame := 0; frame < 3; frame++ {
		l, r := payload[frame*4:frame*4+2], payload[frame*4+2:frame*4+4]
		if l[0] != r[0] || l[1] != r[1] {
			t.Errorf("frame %d: left %v and right %v differ", frame, l, r)
		}
	}
}

func TestRenderStopsWhenContextExpires(t *testing.T) {
	s := newTestSequencer(t, Options{
		Format:           wave.Format{BitsPerSample: 16, NumChannels: 1, SampleRate: 44100},
		MaxRenderSeconds: 120,
	})
	freqs := make([]float64, MaxFrequencies)
	for i := range freqs {
		freqs[i] = 220 + float64(i)*20
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := s.Render(ctx, []synth.NoteEvent{{Frequencies: freqs, Duration: 120}})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected context.DeadlineExceeded, got %v", err)
	}
	if took := time.Since(start); took > 5*time.Second {
		t.Errorf("render kept running %v after its deadline", took)
	}
}

func TestRenderRejects(t *testing.T) {
	s := newTestSequencer(t, Options{MaxRenderSeconds: 1})

	tests := []struct {
		name   string
		events []synth.NoteEvent
		want   error
	}{
		{"too long", []synth.NoteEvent{{Duration: 0.75}, {Duration: 0.5}}, ErrTooLong},
		{"negative duration", []synth.NoteEvent{{Duration: -1}}, ErrInvalidEvent},
		{"negative frequency", []synth.NoteEvent{{Frequencies: []float64{-440}, Duration: 0.1}}, ErrInvalidEvent},
		{"too many frequencies", []synth.NoteEvent{{Frequencies: make([]float64, MaxFrequencies+1), Duration: 0.1}}, ErrInvalidEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Render(context.Background(), tt.events); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestRenderCancelledContext(t *testing.T) {
	s := newTestSequencer(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := s.Render(ctx, []synth.NoteEvent{{Duration: 0.1}}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSoundIsCached(t *testing.T) {
	s := newTestSequencer(t, Options{})
	ctx := context.Background()

	a, err := s.Sound(ctx, synth.NoteEvent{Frequencies: []float64{440, 880}, Duration: 0.1})
	if err != nil {
		t.Fatalf("sound: %v", err)
	}
	b, err := s.Sound(ctx, synth.NoteEvent{Frequencies: []float64{880, 440}, Duration: 0.1})
	if err != nil {
		t.Fatalf("sound: %v", err)
	}
	if a != b {
		t.Error("expected the same cached sound for reordered frequencies")
	}
}

func TestCompose(t *testing.T) {
	s := newTestSequencer(t, Options{GridSteps: 4, MaxRenderSeconds: 1})

	c, err := s.Compose([][]float64{{261.63}, {}, {329.63, 392}}, 4)
	if err != nil {
		t.Fatalf("compose: %v", err)
	}
	if len(c) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(c))
	}
	for i, step := range c {
		if step.Time != 0.25 {
			t.Errorf("step %d: time %v, want 0.25", i, step.Time)
		}
	}
	if len(c[2].Frequency) != 2 || c[2].Frequency[1] != 392 {
		t.Errorf("step 2: unexpected frequencies %v", c[2].Frequency)
	}

	tests := []struct {
		name     string
		steps    [][]float64
		velocity float64
		want     error
	}{
		{"zero velocity", [][]float64{{440}}, 0, ErrInvalidVelocity},
		{"negative velocity", [][]float64{{440}}, -2, ErrInvalidVelocity},
		{"too many steps", make([][]float64, 5), 10, ErrTooManySteps},
		{"too long", make([][]float64, 4), 2, ErrTooLong},
		{"bad frequency", [][]float64{{-1}}, 4, ErrInvalidEvent},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := s.Compose(tt.steps, tt.velocity); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestPreloadFillsCacheWithoutLeaks(t *testing.T) {
	baseline := testutil.Baseline()

	s := newTestSequencer(t, Options{RenderConcurrency: 3})
	if err := s.Preload(context.Background()); err != nil {
		t.Fatalf("preload: %v", err)
	}
	if got := s.cache.Len(); got != len(GridNotes()) {
		t.Errorf("expected %d cached sounds, got %d", len(GridNotes()), got)
	}

	// a preloaded note comes straight from the cache
	key := soundcache.KeyFor(synth.NoteEvent{Frequencies: []float64{440}, Duration: NoteDuration}, testFormat)
	cached, ok := s.cache.Get(key)
	if !ok {
		t.Fatal("A4 not cached")
	}
	w, err := s.NoteSound(context.Background(), 440)
	if err != nil {
		t.Fatalf("note sound: %v", err)
	}
	if w != cached {
		t.Error("expected the preloaded sound")
	}
	if w.Frames() != 2000 {
		t.Errorf("expected a quarter second at 8 kHz, got %d frames", w.Frames())
	}

	testutil.AssertNoGoroutineLeaks(t, baseline, 2)
}

func TestNoteSoundRejectsNonGridFrequency(t *testing.T) {
	s := newTestSequencer(t, Options{})
	for _, f := range []float64{441, 1, 20000} {
		if _, err := s.NoteSound(context.Background(), f); !errors.Is(err, ErrUnknownNote) {
			t.Errorf("%v Hz: expected ErrUnknownNote, got %v", f, err)
		}
	}
	if n := s.cache.Len(); n != 0 {
		t.Errorf("rejected notes must not be cached, cache holds %d", n)
	}
	if _, err := s.NoteSound(context.Background(), 523.26); err != nil {
		t.Errorf("C5 is a grid note: %v", err)
	}
}

func TestPreloadCancelled(t *testing.T) {
	s := newTestSequencer(t, Options{RenderConcurrency: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Preload(ctx); err == nil {
		t.Error("expected an error from a cancelled preload")
	}
}

func TestGridNotes(t *testing.T) {
	notes := GridNotes()
	if len(notes) != 24 {
		t.Fatalf("expected 24 notes, got %d", len(notes))
	}
	if notes[0].Name != "C" || notes[0].Frequency != 261.63 {
		t.Errorf("first note: %+v", notes[0])
	}
	if notes[9].Name != "A" || notes[9].Frequency != 440 {
		t.Errorf("A4: %+v", notes[9])
	}
	if notes[21].Name != "A" || notes[21].Frequency != 880 {
		t.Errorf("A5: %+v", notes[21])
	}
	if !IsGridFrequency(880) || IsGridFrequency(441) {
		t.Error("IsGridFrequency disagrees with the note table")
	}
}

func TestScaleEvents(t *testing.T) {
	events := ScaleEvents()
	if len(events) != 96 {
		t.Fatalf("expected 96 events, got %d", len(events))
	}

	first, last := events[0], events[len(events)-1]
	if first.Frequencies[0] != 261.63 || last.Frequencies[0] != 261.63 {
		t.Errorf("scale should start and end on C4, got %v and %v", first.Frequencies, last.Frequencies)
	}
	if events[47].Frequencies[0] != 987.77*2 || events[48].Frequencies[0] != 987.77*2 {
		t.Errorf("turnaround should repeat the top note, got %v %v", events[47].Frequencies, events[48].Frequencies)
	}
	if events[24].Frequencies[0] != 261.63*2 {
		t.Errorf("second run should start an octave up, got %v", events[24].Frequencies)
	}

	var total float64
	for _, e := range events {
		total += e.Duration
	}
	if total != 24 {
		t.Errorf("expected 24s of audio, got %v", total)
	}
}
