// Package server exposes the OAuth install flow over HTTP so shops can grant
// the app access without the CLI ever handling their password.
package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"spinup/internal/domain"
	"spinup/internal/infrastructure/auth"
	"spinup/internal/ports"
)

type oauthFlow interface {
	AuthorizeURL(shopDomain, state string) string
	ExchangeCode(ctx context.Context, shopDomain, code string) (auth.TokenResponse, error)
}

// Server wires the install routes together. The token validator is optional;
// when present, freshly granted tokens get a liveness check that only logs.
type Server struct {
	logger    zerolog.Logger
	router    chi.Router
	whitelist *auth.Whitelist
	tokens    *auth.TokenStore
	oauth     oauthFlow
	validator ports.TokenValidator
	states    *stateStore
	metrics   *metrics
}

// New creates a server. validator may be nil.
func New(oauth oauthFlow, whitelist *auth.Whitelist, tokens *auth.TokenStore, validator ports.TokenValidator, logger zerolog.Logger) *Server {
	s := &Server{
		logger:    logger,
		whitelist: whitelist,
		tokens:    tokens,
		oauth:     oauth,
		validator: validator,
		states:    newStateStore(),
		metrics:   newMetrics(),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))

	r.Get("/health", s.handleHealth)
	r.Get("/auth", s.handleAuth)
	r.Get("/auth/callback", s.handleCallback)
	r.Get("/shops", s.handleShops)
	r.Handle("/metrics", promhttp.HandlerFor(s.metrics.registry, promhttp.HandlerOpts{}))

	s.router = r
	return s
}

// Router returns the HTTP handler for tests and embedding.
func (s *Server) Router() http.Handler {
	return s.router
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	s.logger.Info().Str("addr", addr).Msg("Starting auth server")
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	shop := r.URL.Query().Get("shop")
	if shop == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing shop parameter"})
		return
	}
	shop = domain.NormalizeDomain(shop)

	allowed, err := s.whitelist.IsAllowed(shop)
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to check whitelist")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if !allowed {
		s.metrics.whitelistDenied.Inc()
		s.logger.Warn().Str("shop", shop).Msg("Shop not whitelisted")
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "shop not whitelisted"})
		return
	}

	state, err := newStateNonce()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to generate state nonce")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	s.states.Put(state, shop)
	s.metrics.installsStarted.Inc()

	s.logger.Info().Str("shop", shop).Msg("Redirecting to Shopify authorize")
	http.Redirect(w, r, s.oauth.AuthorizeURL(shop, state), http.StatusFound)
}

func (s *Server) handleCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	shop := query.Get("shop")
	code := query.Get("code")
	state := query.Get("state")

	if shop == "" || code == "" || state == "" {
		s.metrics.callbackFailures.Inc()
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing shop, code or state parameter"})
		return
	}
	shop = domain.NormalizeDomain(shop)

	expectedShop, ok := s.states.Claim(state)
	if !ok {
		s.metrics.callbackFailures.Inc()
		s.logger.Warn().Str("shop", shop).Msg("Unknown or expired state nonce")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid state"})
		return
	}
	if expectedShop != shop {
		s.metrics.callbackFailures.Inc()
		s.logger.Warn().Str("shop", shop).Str("expected", expectedShop).Msg("Callback shop does not match state")
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "shop mismatch"})
		return
	}

	token, err := s.oauth.ExchangeCode(r.Context(), shop, code)
	if err != nil {
		s.metrics.callbackFailures.Inc()
		s.logger.Error().Err(err).Str("shop", shop).Msg("Token exchange failed")
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "token exchange failed"})
		return
	}

	var scopes []string
	if token.Scope != "" {
		scopes = strings.Split(token.Scope, ",")
	}
	if err := s.tokens.Save(shop, domain.StoredToken{AccessToken: token.AccessToken, Scopes: scopes}); err != nil {
		s.metrics.callbackFailures.Inc()
		s.logger.Error().Err(err).Str("shop", shop).Msg("Failed to store token")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to store token"})
		return
	}

	if s.validator != nil {
		if valid, err := s.validator.ValidateToken(r.Context(), shop, token.AccessToken); err != nil {
			s.logger.Warn().Err(err).Str("shop", shop).Msg("Token validation errored")
		} else if !valid {
			s.logger.Warn().Str("shop", shop).Msg("Stored token failed validation check")
		}
	}

	s.metrics.installsCompleted.Inc()
	s.logger.Info().Str("shop", shop).Msg("Stored access token")

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, successPage, shop)
}

func (s *Server) handleShops(w http.ResponseWriter, r *http.Request) {
	shops, err := s.tokens.ListShops()
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to list shops")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	if shops == nil {
		shops = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"shops": shops})
}

func newStateNonce() (string, error) {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

const successPage = `<!doctype html>
<html>
  <head><title>Connected</title></head>
  <body>
    <h1>Store connected</h1>
    <p>%s is now authorized. You can close this tab and return to the CLI.</p>
  </body>
</html>
`
