// internal/auth/handler.go
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"
)

type claimsKey struct{}

type Handler struct {
	service Service
	tokens  *TokenIssuer
	logger  *log.Logger
}

func NewHandler(service Service, tokens *TokenIssuer, logger *log.Logger) *Handler {
	return &Handler{service: service, tokens: tokens, logger: logger}
}

// HandleLogin exchanges a username and password for a session token.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	user, err := h.service.Authenticate(r.Context(), strings.TrimSpace(req.Username), req.Password)
	switch {
	case errors.Is(err, ErrRateLimited):
		http.Error(w, err.Error(), http.StatusTooManyRequests)
		return
	case errors.Is(err, ErrInvalidCredentials):
		http.Error(w, "invalid username or password", http.StatusUnauthorized)
		return
	case err != nil:
		h.logger.Printf("login failed: %v", err)
		http.Error(w, "authentication unavailable", http.StatusInternalServerError)
		return
	}

	token, expiresAt, err := h.tokens.Issue(user)
	if err != nil {
		h.logger.Printf("token issue failed: %v", err)
		http.Error(w, "authentication unavailable", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(struct {
		Token     string    `json:"token"`
		ExpiresAt time.Time `json:"expires_at"`
		User      *User     `json:"user"`
	}{token, expiresAt, user})
}

// Guard rejects requests without a valid bearer token.
func (h *Handler) Guard(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || raw == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="stockroom"`)
			http.Error(w, "missing bearer token", http.StatusUnauthorized)
			return
		}

		claims, err := h.tokens.Verify(raw)
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="stockroom", error="invalid_token"`)
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey{}, claims)))
	})
}

// ClaimsFromContext returns the claims Guard attached to the request.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(claimsKey{}).(*Claims)
	return claims, ok
}
