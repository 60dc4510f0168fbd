package handler

import (
	"github.com/go-chi/chi/v5"
)

// Routes returns the /v1 API, to be mounted under "/v1".
func (h *Handlers) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/notes", h.Notes)
	r.Get("/notes/{frequency}/sound", h.NoteSound)
	r.Get("/scale/sound", h.ScaleSound)
	r.Post("/render", h.Render)

	r.Route("/compositions", func(r chi.Router) {
		r.Get("/", h.ListCompositions)
		r.Route("/{index}", func(r chi.Router) {
			r.Put("/", h.SaveComposition)
			r.Get("/", h.GetComposition)
			r.Get("/sound", h.CompositionSound)
		})
	})
	return r
}
