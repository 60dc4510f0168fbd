package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/RenatoCabral2022/tonegrid/internal/model"
	"github.com/RenatoCabral2022/tonegrid/internal/store"
)

func indexParam(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("index %q: %w", raw, store.ErrInvalidIndex)
	}
	return i, nil
}

// ListCompositions handles GET /v1/compositions.
func (h *Handlers) ListCompositions(w http.ResponseWriter, r *http.Request) {
	idx, err := h.store.Indexes(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.CompositionListResponse{Indexes: idx})
}

// SaveComposition handles PUT /v1/compositions/{index}.
func (h *Handlers) SaveComposition(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var req model.SaveCompositionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}

	c, err := h.seq.Compose(req.Steps, req.Velocity)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.store.Save(r.Context(), index, c); err != nil {
		h.writeError(w, r, err)
		return
	}

	h.logger.Info("composition saved", zap.Int("index", index), zap.Int("steps", len(c)))
	writeJSON(w, http.StatusOK, model.CompositionResponse{Index: index, Steps: c})
}

// GetComposition handles GET /v1/compositions/{index}.
func (h *Handlers) GetComposition(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.store.Load(r.Context(), index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, model.CompositionResponse{Index: index, Steps: c})
}

// CompositionSound handles GET /v1/compositions/{index}/sound.
func (h *Handlers) CompositionSound(w http.ResponseWriter, r *http.Request) {
	index, err := indexParam(r)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	c, err := h.store.Load(r.Context(), index)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	sound, err := h.seq.Render(r.Context(), c.Events())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	h.writeSound(w, r, sound)
}
