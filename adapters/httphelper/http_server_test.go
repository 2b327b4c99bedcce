package httphelper

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricsServer(t *testing.T) {
	testCases := []struct {
		name     string
		request  *http.Request
		tcChecks func(t *testing.T, w *httptest.ResponseRecorder)
	}{
		{
			name:    "health check",
			request: httptest.NewRequest(http.MethodGet, LivenessCheckEndpoint, nil),
			tcChecks: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, w.Code)
				assert.Equal(t, "test server", w.Header().Get("Server"))
				assert.Contains(t, w.Body.String(), http.StatusText(http.StatusOK))
			},
		},
		{
			name:    "metrics",
			request: httptest.NewRequest(http.MethodGet, MetricsEndpoint, nil),
			tcChecks: func(t *testing.T, w *httptest.ResponseRecorder) {
				assert.Equal(t, http.StatusOK, w.Code)
				assert.Contains(t, w.Body.String(), "go_goroutines")
			},
		},
	}
	for _, c := range testCases {
		t.Run(c.name, func(t *testing.T) {
			srv := NewMetricsServer(":0", "test server")
			w := httptest.NewRecorder()
			srv.Router.ServeHTTP(w, c.request)
			c.tcChecks(t, w)
		})
	}
}

func TestSetUpCORS(t *testing.T) {
	srv := &HTTPServer{Router: NewRouter()}
	srv.SetUpCORS([]string{"http://allowed.example"}, false)
	srv.Router.Get("/api/datasources", func(w http.ResponseWriter, r *http.Request) {
		RespondJSON(w, http.StatusOK, []string{})
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/datasources", nil)
	req.Header.Set("Origin", "http://allowed.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)
	assert.Equal(t, "http://allowed.example", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/datasources", nil)
	req.Header.Set("Origin", "http://other.example")
	w = httptest.NewRecorder()
	srv.Router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestServe_Shutdown(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	srv := NewMetricsServer(addr, "test server")
	ctx, cancel := context.WithCancel(context.Background())

	served := make(chan error)
	go func() {
		served <- srv.Serve(ctx)
	}()

	require.Eventually(t, func() bool {
		resp, err := http.Get(fmt.Sprintf("http://%s%s", addr, LivenessCheckEndpoint))
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-served:
		assert.NoError(t, err)
	case <-time.After(ShutdownTimeout):
		t.Fatal("server did not shut down")
	}
}

func TestRespondError(t *testing.T) {
	w := httptest.NewRecorder()
	Respond404(w, "Data source not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"message":"Data source not found"}`, w.Body.String())
	assert.True(t, HttpFailed(w.Code))
}
