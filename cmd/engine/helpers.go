package main

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"net"
	"net/http"
	"strconv"
	"time"

	"evolve-engine/internal/domain"
	"evolve-engine/internal/httpapi"
	"evolve-engine/internal/store"

	"go.uber.org/zap"
)

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// guardLocal rejects requests that are not from loopback or lack the
// X-Shutdown-Token header. It reports whether the request may proceed.
func guardLocal(w http.ResponseWriter, r *http.Request, token string) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	if host != "127.0.0.1" && host != "::1" && host != "localhost" {
		httpapi.WriteError(w, http.StatusForbidden, "forbidden")
		return false
	}

	got := r.Header.Get("X-Shutdown-Token")
	if got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(token)) != 1 {
		httpapi.WriteError(w, http.StatusUnauthorized, "unauthorized")
		return false
	}
	return true
}

func shutdownHandler(token string, srv *http.Server, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			httpapi.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if !guardLocal(w, r, token) {
			return
		}

		// Respond immediately, then shutdown asynchronously
		httpapi.WriteJSON(w, http.StatusOK, map[string]any{"ok": true})
		log.Info("shutdown requested", zap.String("request_id", httpapi.RequestIDFrom(r.Context())))

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()
	}
}

// consultationsHandler lists stored consultation requests, newest first.
// Only the store backend has anything to list.
func consultationsHandler(token string, db *sql.DB, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			httpapi.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
			return
		}
		if !guardLocal(w, r, token) {
			return
		}

		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 0 {
				httpapi.WriteError(w, http.StatusBadRequest, "invalid limit")
				return
			}
			limit = n
		}

		list, err := store.ListConsultations(r.Context(), db, limit)
		if err != nil {
			log.Error("list consultations", zap.Error(err))
			httpapi.WriteError(w, http.StatusInternalServerError, "Failed to list consultations")
			return
		}
		if list == nil {
			list = []domain.Consultation{}
		}
		httpapi.WriteJSON(w, http.StatusOK, list)
	}
}
