package draft

import (
	"github.com/go-chi/chi/v5"
)

// MountRoutes registers the drafting endpoints on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/drafts", h.Open)
	r.Route("/drafts/{session}", func(r chi.Router) {
		r.Get("/", h.Show)
		r.Delete("/", h.CloseSession)
		r.Post("/patch", h.Patch)
		r.Get("/totals", h.Totals)
		r.Post("/terms/{term}", h.ToggleTerm)
		r.Post("/lead/detach", h.DetachLead)

		r.Post("/search/{field}", h.FieldSearch)
		r.Get("/search/{field}", h.FieldSearchState)
		r.Post("/search/{field}/select", h.FieldSelect)
		r.Post("/search/{field}/blur", h.FieldBlur)

		r.Post("/lines", h.AddLine)
		r.Route("/lines/{line}", func(r chi.Router) {
			r.Post("/", h.UpdateLine)
			r.Post("/remove", h.RemoveLine)
			r.Post("/search", h.LineSearch)
			r.Get("/search", h.LineSearchState)
			r.Post("/search/blur", h.LineBlur)
			r.Post("/select", h.LineSelect)
		})
	})
}
