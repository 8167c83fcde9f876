// cmd/stockroom/router.go
package main

import (
	"log"
	"net/http"

	"stockroom/internal/auth"
	"stockroom/internal/config"
	"stockroom/internal/export"
	"stockroom/internal/inventory"
	"stockroom/internal/journal"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
)

func newRouter(db *sqlx.DB, cfg *config.Config, secret string, logger *log.Logger) http.Handler {
	j := journal.NewJournal(db)
	svc := inventory.NewService(db, j, logger)
	authHandler := auth.NewHandler(auth.NewService(db, cfg.LoginRatePerMinute), auth.NewTokenIssuer(secret, cfg.TokenTTL), logger)

	guard := func(next http.Handler) http.Handler {
		return authHandler.Guard(audit(logger, next))
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Post("/login", authHandler.HandleLogin)
	inventory.NewHandler(svc, logger).Mount(r, guard)
	export.NewHandler(svc, logger).Mount(r)
	r.Get("/journal", journal.NewHandler(j, logger).HandleStream)
	return r
}

// audit logs each authorized mutation with the acting user.
func audit(logger *log.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if claims, ok := auth.ClaimsFromContext(r.Context()); ok {
			logger.Printf("%s %s by %s", r.Method, r.URL.Path, claims.Subject)
		}
		next.ServeHTTP(w, r)
	})
}
