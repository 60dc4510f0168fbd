package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/RenatoCabral2022/tonegrid/internal/middleware"
	"github.com/RenatoCabral2022/tonegrid/internal/model"
	"github.com/RenatoCabral2022/tonegrid/internal/sequencer"
	"github.com/RenatoCabral2022/tonegrid/internal/store"
	"github.com/RenatoCabral2022/tonegrid/internal/synth"
	"github.com/RenatoCabral2022/tonegrid/internal/wave"
)

const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	seq    *sequencer.Sequencer
	store  store.Store
	logger *zap.Logger
}

// NewHandlers creates handlers that render through seq and persist to st.
func NewHandlers(seq *sequencer.Sequencer, st store.Store, logger *zap.Logger) *Handlers {
	return &Handlers{seq: seq, store: st, logger: logger}
}

// Health handles GET /healthz.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, errBadRequest)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeSound answers with the data URI description, or the raw file when
// the client asks for ?format=wav.
func (h *Handlers) writeSound(w http.ResponseWriter, r *http.Request, sound *wave.EncodedWave) {
	if r.URL.Query().Get("format") == "wav" {
		w.Header().Set("Content-Type", "audio/wav")
		w.Header().Set("Content-Length", strconv.Itoa(len(sound.Bytes)))
		w.Write(sound.Bytes)
		return
	}
	writeJSON(w, http.StatusOK, model.SoundResponse{
		DataURI:     sound.DataURI(),
		SampleCount: sound.Frames() * int(sound.Header.NumChannels),
		ByteLength:  len(sound.Bytes),
	})
}

func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("requestId", middleware.GetRequestID(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound),
		errors.Is(err, sequencer.ErrUnknownNote):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, store.ErrInvalidIndex),
		errors.Is(err, sequencer.ErrInvalidEvent),
		errors.Is(err, sequencer.ErrInvalidVelocity),
		errors.Is(err, sequencer.ErrTooLong),
		errors.Is(err, sequencer.ErrTooManySteps),
		errors.Is(err, synth.ErrInvalidConfig),
		errors.Is(err, wave.ErrInvalidConfig):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
