package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// Uploaded images (scene thumbnails, token art). Paths are random
	// UUID filenames, not user-supplied.
	r.Handle("/uploads/*", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadsDir))))

	r.Route("/api", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Login (no auth required)
		r.Post("/auth/login", s.handleLogin)

		// WebSocket upgrade. No bearer token on a websocket dial; the
		// handler authenticates via the single-use ticket instead.
		r.Get("/ws", s.handleWebSocket)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)
			r.Post("/auth/ws-ticket", s.handleWSTicket)

			// Account management is GM only
			r.Group(func(r chi.Router) {
				r.Use(s.requireGM)
				r.Post("/auth/register", s.handleRegister)
				r.Get("/users", s.handleListUsers)
			})

			// Scene endpoints
			r.Route("/scenes", func(r chi.Router) {
				r.Get("/", s.handleListScenes)
				r.With(s.requireGM).Post("/", s.handleCreateScene)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetScene)
					r.With(s.requireGM).Post("/activate", s.handleActivateScene)
					r.With(s.requireGM).Post("/layers/{layerID}/tokens", s.handleCreateToken)
				})
			})

			// Dice endpoints
			r.Route("/dice", func(r chi.Router) {
				r.Get("/formulas", s.handleListFormulas)
				r.Post("/formulas", s.handleCreateFormula)
				r.Delete("/formulas/{id}", s.handleDeleteFormula)
				r.Post("/roll", s.handleRoll)
				r.Get("/logs", s.handleListDiceLogs)
			})

			// Journal endpoints
			r.Route("/journal", func(r chi.Router) {
				r.Route("/notes", func(r chi.Router) {
					r.Get("/", s.handleListNotes)
					r.Post("/", s.handleCreateNote)
					r.Route("/{id}", func(r chi.Router) {
						r.Get("/", s.handleGetNote)
						r.Put("/", s.handleUpdateNote)
						r.Delete("/", s.handleDeleteNote)
						r.Post("/fields", s.handleAddField)
					})
				})
				r.Put("/fields/{fieldID}", s.handleUpdateField)
				r.Delete("/fields/{fieldID}", s.handleDeleteField)

				r.Route("/trackers", func(r chi.Router) {
					r.Get("/", s.handleListTrackers)
					r.Post("/", s.handleCreateTracker)
					r.Put("/{id}", s.handleUpdateTracker)
					r.Delete("/{id}", s.handleDeleteTracker)
				})
			})

			// Token library endpoints
			r.Route("/library", func(r chi.Router) {
				r.Get("/folders", s.handleListFolders)
				r.Get("/folders/{folderID}/assets", s.handleListAssets)

				r.Group(func(r chi.Router) {
					r.Use(s.requireGM)
					r.Post("/folders", s.handleCreateFolder)
					r.Delete("/folders/{id}", s.handleDeleteFolder)
					r.Post("/assets", s.handleUploadAsset)
					r.Delete("/assets/{id}", s.handleDeleteAsset)
				})
			})
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
