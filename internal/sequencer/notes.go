package sequencer

import (
	"github.com/RenatoCabral2022/tonegrid/internal/model"
	"github.com/RenatoCabral2022/tonegrid/internal/synth"
)

// NoteDuration is how long a single grid note sounds when previewed.
const NoteDuration = 0.25

// chromatic is the lower octave of the grid, C4 to B4.
var chromatic = []model.Note{
	{Name: "C", Frequency: 261.63},
	{Name: "C#", Frequency: 277.18},
	{Name: "D", Frequency: 293.66},
	{Name: "D#", Frequency: 311.13},
	{Name: "E", Frequency: 329.63},
	{Name: "F", Frequency: 349.23},
	{Name: "F#", Frequency: 369.99},
	{Name: "G", Frequency: 392},
	{Name: "G#", Frequency: 415.3},
	{Name: "A", Frequency: 440},
	{Name: "A#", Frequency: 466.16},
	{Name: "B", Frequency: 493.88},
}

// scale lists the demo's two chromatic octaves, C4 to B5.
var scale = []float64{
	261.63, 277.18, 293.66, 311.13, 329.63, 349.23, 369.99, 392, 415.3, 440, 466.16, 493.88,
	523.26, 554.37, 587.33, 622.25, 659.26, 698.46, 739.99, 783.99, 830.61, 880, 932.33, 987.77,
}

// GridNotes returns the grid rows: the chromatic octave followed by the
// same names one octave up.
func GridNotes() []model.Note {
	notes := make([]model.Note, 0, 2*len(chromatic))
	notes = append(notes, chromatic...)
	for _, n := range chromatic {
		notes = append(notes, model.Note{Name: n.Name, Frequency: n.Frequency * 2})
	}
	return notes
}

// IsGridFrequency reports whether f is one of the grid rows.
func IsGridFrequency(f float64) bool {
	for _, n := range GridNotes() {
		if n.Frequency == f {
			return true
		}
	}
	return false
}

// ScaleEvents returns the demo sequence: the scale table, then a copy of it
// with every frequency doubled, then all of that backwards.
func ScaleEvents() []synth.NoteEvent {
	run := make([]synth.NoteEvent, 0, 2*len(scale))
	for _, f := range scale {
		run = append(run, synth.NoteEvent{Frequencies: []float64{f}, Duration: NoteDuration})
	}
	for _, f := range scale {
		run = append(run, synth.NoteEvent{Frequencies: []float64{f * 2}, Duration: NoteDuration})
	}

	events := make([]synth.NoteEvent, 0, 2*len(run))
	events = append(events, run...)
	for i := len(run) - 1; i >= 0; i-- {
		events = append(events, run[i])
	}
	return events
}
