package observe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestHandler_HealthAndMetrics(t *testing.T) {
	probe := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "budgetchat_observe_probe_total",
		Help: "Test-only counter",
	})
	prometheus.MustRegister(probe)
	t.Cleanup(func() { prometheus.Unregister(probe) })
	probe.Inc()

	srv := httptest.NewServer(Handler())
	t.Cleanup(srv.Close)

	body := get(t, srv.URL+"/healthz")
	if strings.TrimSpace(body) != "ok" {
		t.Fatalf("healthz body = %q", body)
	}

	body = get(t, srv.URL+"/metrics")
	if !strings.Contains(body, "budgetchat_observe_probe_total 1") {
		t.Fatalf("metrics output missing probe counter")
	}
}

func get(t *testing.T, url string) string {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s: %v", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET %s: status %d", url, resp.StatusCode)
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(b)
}

func TestNewServer_ShutsDown(t *testing.T) {
	srv := NewServer("127.0.0.1:0")
	if srv.ReadHeaderTimeout <= 0 {
		t.Fatalf("ReadHeaderTimeout not set")
	}

	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	served := make(chan error, 1)
	go func() { served <- srv.Serve(ln) }()

	body := get(t, "http://"+ln.Addr().String()+"/healthz")
	if strings.TrimSpace(body) != "ok" {
		t.Fatalf("healthz body = %q", body)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	select {
	case err := <-served:
		if !errors.Is(err, http.ErrServerClosed) {
			t.Fatalf("serve returned %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after shutdown")
	}
}
