package chain

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSidecarConnStatusProbesHealth(t *testing.T) {
	var healthHits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			atomic.AddInt32(&healthHits, 1)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// a fresh client must establish real status before any poll loop runs
	c := NewSidecarClient("polkadot", srv.URL, 42)
	assert.Equal(t, ConnStatusConnected, c.ConnStatus())
	assert.Equal(t, int32(1), atomic.LoadInt32(&healthHits))

	// the result is cached within the poll interval
	assert.Equal(t, ConnStatusConnected, c.ConnStatus())
	assert.Equal(t, int32(1), atomic.LoadInt32(&healthHits))
}

func TestSidecarConnStatusUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv.Close()

	c := NewSidecarClient("polkadot", srv.URL, 42)
	assert.Equal(t, ConnStatusDisconnected, c.ConnStatus())
}

func TestSidecarConnStatusHealthError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewSidecarClient("polkadot", srv.URL, 42)
	assert.Equal(t, ConnStatusDisconnected, c.ConnStatus())
}
