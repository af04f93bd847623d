// Package server exposes the back office over a JSON HTTP API.
package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"dropshipManagement/internal/auth"
	"dropshipManagement/internal/config"
	"dropshipManagement/internal/workflow"
	"dropshipManagement/repository"
)

const (
	maxPageSize      = 100 // maximum allowed page size for list operations
	defaultPageSize  = 20
	cursorSeparator  = "|"
	sqliteDateFormat = "2006-01-02 15:04:05"
	tokenTTL         = 24 * time.Hour
)

// Server bundles dependencies and implements the HTTP handlers.
type Server struct {
	Users     repository.UserRepositoryI
	Shipments repository.ShipmentRepositoryI
	Engine    *workflow.Engine
	Secret    string
	Log       *zap.Logger
}

// Handler builds the routed, auth-wrapped handler for the API.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	mux.HandleFunc("POST /v1/auth/signup", s.handleSignup)
	mux.HandleFunc("POST /v1/auth/login", s.handleLogin)

	mux.HandleFunc("POST /v1/shipments", s.handleCreateShipment)
	mux.HandleFunc("GET /v1/shipments", s.handleListShipments)
	mux.HandleFunc("GET /v1/shipments/{id}", s.handleGetShipment)
	mux.HandleFunc("GET /v1/my/shipments", s.handleMyShipments)

	mux.HandleFunc("POST /v1/shipments/{id}/accept", s.handleAccept)
	mux.HandleFunc("POST /v1/shipments/{id}/price-details", s.handlePriceDetails)
	mux.HandleFunc("POST /v1/shipments/{id}/invoice", s.handleInvoice)
	mux.HandleFunc("POST /v1/shipments/{id}/request-pay", s.handleRequestPay)
	mux.HandleFunc("POST /v1/shipments/{id}/payment", s.handlePayment)
	mux.HandleFunc("POST /v1/shipments/{id}/ready", s.handleReady)
	mux.HandleFunc("POST /v1/shipments/{id}/dispatch", s.handleDispatch)

	mux.HandleFunc("GET /v1/rates/quote", s.handleRateQuote)

	mw := auth.Middleware(s.Secret, "/healthz", "/v1/auth/signup", "/v1/auth/login", "/v1/rates/quote")
	return mw(mux)
}

// Start listens on cfg.HTTP.Address and returns a shutdown function.
func Start(cfg *config.Config, s *Server) (func(context.Context) error, error) {
	if cfg == nil {
		panic("config is required")
	}
	addr := cfg.HTTP.Address
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()
	// Give a bind failure a moment to surface.
	select {
	case err := <-errc:
		return nil, err
	case <-time.After(50 * time.Millisecond):
	}
	return srv.Shutdown, nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

// writeDomainError maps workflow/auth errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, workflow.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, workflow.ErrInvalidTransition), errors.Is(err, workflow.ErrConflict):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, auth.ErrPermissionDenied):
		writeError(w, http.StatusForbidden, err.Error())
	default:
		s.Log.Error("internal error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	err := dec.Decode(v)
	if errors.Is(err, io.EOF) {
		return nil // an empty body is a valid empty form
	}
	return err
}

// encodeCursor builds an opaque next_page_token from request unix seconds
// and shipment id.
func encodeCursor(seconds int64, id string) string {
	raw := strconv.FormatInt(seconds, 10) + cursorSeparator + id
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

// decodeCursor parses an opaque page_token into request unix seconds and
// shipment id.
func decodeCursor(token string, seconds *int64, id *string) error {
	b, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return fmt.Errorf("base64: %w", err)
	}
	parts := strings.SplitN(string(b), cursorSeparator, 2)
	if len(parts) != 2 {
		return fmt.Errorf("invalid cursor format")
	}
	sec, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid cursor seconds: %w", err)
	}
	*seconds = sec
	*id = parts[1]
	return nil
}

// requestToUnixSeconds converts a stored request_date into unix seconds.
func requestToUnixSeconds(requestDate string) (int64, error) {
	t, err := time.Parse(sqliteDateFormat, requestDate)
	if err != nil {
		return 0, err
	}
	return t.Unix(), nil
}
