package model

import "github.com/RenatoCabral2022/tonegrid/internal/synth"

// Step is one persisted grid column: how long it lasts and which
// frequencies were checked.
type Step struct {
	Time      float64   `json:"time"`
	Frequency []float64 `json:"frequency"`
}

// Composition is a saved arrangement, one Step per grid column.
type Composition []Step

// Events converts the composition to note events. Non-positive entries in
// Frequency are dropped, so a step saved as [0] is a rest.
func (c Composition) Events() []synth.NoteEvent {
	events := make([]synth.NoteEvent, len(c))
	for i, s := range c {
		freqs := make([]float64, 0, len(s.Frequency))
		for _, f := range s.Frequency {
			if f > 0 {
				freqs = append(freqs, f)
			}
		}
		events[i] = synth.NoteEvent{Frequencies: freqs, Duration: s.Time}
	}
	return events
}

// SaveCompositionRequest is the request body for PUT /v1/compositions/{index}.
type SaveCompositionRequest struct {
	Velocity float64     `json:"velocity"`
	Steps    [][]float64 `json:"steps"`
}

// CompositionResponse is the response for GET /v1/compositions/{index}.
type CompositionResponse struct {
	Index int         `json:"index"`
	Steps Composition `json:"steps"`
}

// CompositionListResponse is the response for GET /v1/compositions.
type CompositionListResponse struct {
	Indexes []int `json:"indexes"`
}
