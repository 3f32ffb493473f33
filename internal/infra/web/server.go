package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"bluegenie-core/internal/infra/metrics"
	"bluegenie-core/internal/usecase"
)

// Server exposes the operational HTTP surface: health, metrics, and the
// payment processor webhook. The companion chat itself never goes through
// this server.
type Server struct {
	entitlements  usecase.EntitlementUseCase
	webhookSecret []byte
	log           *zerolog.Logger
}

func NewServer(entitlements usecase.EntitlementUseCase, webhookSecret string, logger *zerolog.Logger) *Server {
	return &Server{
		entitlements:  entitlements,
		webhookSecret: []byte(webhookSecret),
		log:           logger,
	}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/api/v1/payments/webhook", s.handlePaymentWebhook)
	return r
}

// Run serves until ctx is canceled, then drains with a short grace period.
func (s *Server) Run(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info().Int("port", port).Msg("http server listening")

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// handlePaymentWebhook activates premium after verifying the processor's
// HS256 signature. A bad token is rejected before any state is touched.
func (s *Server) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	raw, err := bearerToken(r)
	if err != nil {
		metrics.IncPayment("rejected")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	claims, err := verifyWebhookToken(raw, s.webhookSecret)
	if err != nil {
		metrics.IncPayment("rejected")
		s.log.Warn().Err(err).Msg("webhook token rejected")
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}
	if claims.Event != EventPaymentSucceeded {
		// Other processor events are acknowledged but change nothing.
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := s.entitlements.ActivatePremium(r.Context(), claims.UserID); err != nil {
		metrics.IncPayment("failed")
		s.log.Error().Err(err).Str("user_id", claims.UserID).Msg("premium activation failed")
		http.Error(w, "activation failed", http.StatusInternalServerError)
		return
	}
	metrics.IncPayment("succeeded")
	s.log.Info().Str("user_id", claims.UserID).Msg("payment webhook processed")

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
