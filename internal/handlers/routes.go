package handlers

import "net/http"

// Handlers groups everything the router needs
type Handlers struct {
	Middleware *Middleware
	Auth       *AuthHandler
	Practice   *PracticeHandler
	Catalog    *CatalogHandler
	Health     *HealthHandler
}

// Routes builds the API router
func (h *Handlers) Routes() *http.ServeMux {
	m := h.Middleware
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.Health.Healthz)

	// Public routes
	mux.HandleFunc("POST /api/register", m.RateLimit(h.Auth.Register))
	mux.HandleFunc("POST /api/login", m.RateLimit(h.Auth.Login))

	// Practice routes
	mux.HandleFunc("GET /api/practice", m.RequireAuth(h.Practice.ShowPractice))
	mux.HandleFunc("POST /api/practice/start", m.RequireAuth(h.Practice.StartPractice))
	mux.HandleFunc("POST /api/practice/next", m.RequireAuth(h.Practice.NextExample))
	mux.HandleFunc("POST /api/practice/tier", m.RequireAuth(h.Practice.ChangeTier))
	mux.HandleFunc("POST /api/practice/submit", m.RequireAuth(h.Practice.SubmitAnswer))
	mux.HandleFunc("POST /api/practice/reveal/{part}", m.RequireAuth(h.Practice.Reveal))
	mux.HandleFunc("POST /api/practice/end", m.RequireAuth(h.Practice.EndPractice))

	// Catalog routes
	mux.HandleFunc("GET /api/lookup", m.RequireAuth(h.Catalog.Lookup))
	mux.HandleFunc("POST /api/practice/enroll", m.RequireAuth(h.Catalog.Enroll))
	mux.HandleFunc("GET /api/progress/summary", m.RequireAuth(h.Catalog.Summary))

	return mux
}
