package main

import (
	"bytes"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func TestNewHTTPServer_NoBodyReadDeadline(t *testing.T) {
	srv := newHTTPServer("9090", http.NotFoundHandler())

	assert.Equal(t, ":9090", srv.Addr)
	assert.Zero(t, srv.ReadTimeout)
	assert.Positive(t, srv.ReadHeaderTimeout)
}

func TestServe_ShutsDownOnSignal(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	srv := newHTTPServer("0", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	quit := make(chan os.Signal, 1)
	done := make(chan error, 1)
	go func() { done <- serve(srv, ln, quit, quietLogger()) }()

	resp, err := http.Get("http://" + ln.Addr().String())
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, "ok", string(body))

	quit <- syscall.SIGTERM
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not return after the signal")
	}

	_, err = http.Get("http://" + ln.Addr().String())
	assert.Error(t, err)
}

func TestServe_ReturnsListenerFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	require.NoError(t, ln.Close())

	srv := newHTTPServer("0", http.NotFoundHandler())
	done := make(chan error, 1)
	go func() { done <- serve(srv, ln, make(chan os.Signal), quietLogger()) }()

	select {
	case err := <-done:
		assert.Error(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("serve did not report the listener failure")
	}
}
