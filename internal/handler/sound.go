package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/RenatoCabral2022/tonegrid/internal/model"
	"github.com/RenatoCabral2022/tonegrid/internal/sequencer"
)

// Notes handles GET /v1/notes.
func (h *Handlers) Notes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sequencer.GridNotes())
}

// NoteSound handles GET /v1/notes/{frequency}/sound.
func (h *Handlers) NoteSound(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "frequency")
	freq, err := strconv.ParseFloat(raw, 64)
	if err != nil || freq <= 0 {
		h.writeError(w, r, fmt.Errorf("frequency %q: %w", raw, errBadRequest))
		return
	}

	sound, err := h.seq.NoteSound(r.Context(), freq)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSound(w, r, sound)
}

// ScaleSound handles GET /v1/scale/sound.
func (h *Handlers) ScaleSound(w http.ResponseWriter, r *http.Request) {
	sound, err := h.seq.ScaleSound(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSound(w, r, sound)
}

// Render handles POST /v1/render.
func (h *Handlers) Render(w http.ResponseWriter, r *http.Request) {
	var req model.RenderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	sound, err := h.seq.Render(r.Context(), req.Events)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSound(w, r, sound)
}
