package handlers

import "github.com/go-chi/chi/v5"

// RegisterRoutes mounts the API endpoints on r
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/v1", func(r chi.Router) {
		r.Get("/medicines", h.ServeMedicines)
		r.Get("/medicines/{id}", h.FindMedicine)
		r.Get("/medicines/{id}/similar", h.FindSimilar)

		r.Post("/sessions", h.CreateSession)
		r.Route("/sessions/{sessionID}", func(r chi.Router) {
			r.Get("/", h.GetSession)
			r.Delete("/", h.DeleteSession)
			r.Put("/search", h.UpdateSearch)
			r.Put("/page", h.UpdatePage)
			r.Put("/selection", h.UpdateSelection)
			r.Delete("/selection", h.ClearSelection)
		})
	})

	r.Get("/health", h.HealthCheck)
}
