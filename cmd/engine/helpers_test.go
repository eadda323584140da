package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"evolve-engine/internal/domain"
	"evolve-engine/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
	"go.uber.org/zap"
)

func TestRandomToken(t *testing.T) {
	a, err := randomToken(16)
	require.NoError(t, err)
	b, err := randomToken(16)
	require.NoError(t, err)
	assert.Len(t, a, 32)
	assert.NotEqual(t, a, b)
}

func TestShutdownHandlerGuards(t *testing.T) {
	h := shutdownHandler("secret", &http.Server{}, zap.NewNop())

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/shutdown", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/shutdown", nil)
	req.RemoteAddr = "10.0.0.5:5555"
	req.Header.Set("X-Shutdown-Token", "secret")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/shutdown", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	req.Header.Set("X-Shutdown-Token", "wrong")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestShutdownHandlerAcceptsLocalToken(t *testing.T) {
	srv := &http.Server{}
	h := shutdownHandler("secret", srv, zap.NewNop())

	req := httptest.NewRequest(http.MethodPost, "/shutdown", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	req.Header.Set("X-Shutdown-Token", "secret")
	rec := httptest.NewRecorder()
	h(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())
}

func TestConsultationsHandlerListsStored(t *testing.T) {
	db, err := store.Open(filepath.Join(t.TempDir(), store.DBFileName))
	require.NoError(t, err)
	defer db.Close()

	c := domain.Consultation{ID: "1", Name: "Ann", Email: "ann@a.com", Company: "A", Details: "d",
		CreatedAt: time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)}
	require.NoError(t, store.InsertConsultation(context.Background(), db.Pool, c))

	h := consultationsHandler("secret", db.Pool, zap.NewNop())

	req := httptest.NewRequest(http.MethodGet, "/api/consultations", nil)
	req.RemoteAddr = "10.0.0.5:5555"
	req.Header.Set("X-Shutdown-Token", "secret")
	rec := httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/consultations?limit=10", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	req.Header.Set("X-Shutdown-Token", "secret")
	rec = httptest.NewRecorder()
	h(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var got []domain.Consultation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, []domain.Consultation{c}, got)

	req = httptest.NewRequest(http.MethodGet, "/api/consultations?limit=x", nil)
	req.RemoteAddr = "127.0.0.1:5555"
	req.Header.Set("X-Shutdown-Token", "secret")
	rec = httptest.NewRecorder()
	h(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestRunStopsOnShutdownRequest(t *testing.T) {
	keyring.MockInit()
	addr := freeAddr(t)
	t.Setenv("ENGINE_ADDR", addr)
	t.Setenv("ENGINE_DATA_DIR", t.TempDir())
	t.Setenv("ENGINE_SHUTDOWN_TOKEN", "secret")
	t.Setenv("CONSULTATION_BACKEND", "store")
	t.Setenv("LOG_LEVEL", "error")

	done := make(chan error, 1)
	go func() { done <- run() }()

	base := "http://" + addr
	require.Eventually(t, func() bool {
		res, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		res.Body.Close()
		return res.StatusCode == http.StatusOK
	}, 5*time.Second, 20*time.Millisecond)

	req, err := http.NewRequest(http.MethodGet, base+"/api/consultations", nil)
	require.NoError(t, err)
	req.Header.Set("X-Shutdown-Token", "secret")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.JSONEq(t, `[]`, string(body))

	req, err = http.NewRequest(http.MethodPost, base+"/shutdown", nil)
	require.NoError(t, err)
	req.Header.Set("X-Shutdown-Token", "secret")
	res, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	res.Body.Close()
	require.Equal(t, http.StatusOK, res.StatusCode)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after shutdown")
	}
}
