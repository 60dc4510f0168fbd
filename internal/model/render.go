package model

import "github.com/RenatoCabral2022/tonegrid/internal/synth"

// RenderRequest is the request body for POST /v1/render.
type RenderRequest struct {
	Events []synth.NoteEvent `json:"events"`
}

// SoundResponse describes a rendered sound.
type SoundResponse struct {
	DataURI     string `json:"dataUri"`
	SampleCount int    `json:"sampleCount"`
	ByteLength  int    `json:"byteLength"`
}

// Note is one row of the sequencer grid.
type Note struct {
	Name      string  `json:"name"`
	Frequency float64 `json:"frequency"`
}

// ErrorResponse is the body of every non-2xx JSON response.
type ErrorResponse struct {
	Error string `json:"error"`
}
