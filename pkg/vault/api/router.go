// Package api exposes the vault and auth services over HTTP.
//
// All content routes require a bearer access token; the authenticated
// user is resolved once per request by the RequireUser middleware and
// every operation is scoped to that user.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/localvault/localvault/pkg/vault"
	"github.com/localvault/localvault/pkg/vault/auth"
)

// NewRouter assembles the full HTTP surface.
func NewRouter(contentSvc vault.Service, authSvc *auth.Service, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	authH := &authHandler{service: authSvc}
	contentH := &contentHandler{service: contentSvc, logger: logger}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/request-otp", authH.requestOTP)
			r.Post("/verify-otp", authH.verifyOTP)
			r.Post("/refresh", authH.refresh)
			r.With(RequireUser(authSvc)).Get("/auth-validity", authH.authValidity)
		})

		r.Route("/content", func(r chi.Router) {
			r.Use(RequireUser(authSvc))
			r.Post("/upload", contentH.upload)
			r.Get("/list", contentH.list)
			r.Get("/stats/summary", contentH.stats)
			r.Get("/download/{contentID}", contentH.download)
			r.Get("/{contentID}", contentH.get)
			r.Delete("/{contentID}", contentH.delete)
		})
	})

	return r
}
