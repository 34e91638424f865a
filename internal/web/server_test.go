package web

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tlikar/garage-monitor/internal/door"
	"github.com/tlikar/garage-monitor/internal/status"
)

func newTestTracker() *status.Tracker {
	tr := status.NewTracker(time.Now().Add(-time.Minute), status.Config{
		CheckIntervalMs: 2000,
		DebounceMs:      1000,
		NtfyServer:      "https://ntfy.sh",
		NtfyTopic:       "garage",
	})
	tr.Update(door.StateClosed, true, time.Now().Add(-30*time.Second), status.Counts{Closed: 2, Opened: 1})
	tr.RecordNotification(true)
	return tr
}

func TestHandleJSON(t *testing.T) {
	srv := New(":0", newTestTracker())

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.json", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var decoded StatusJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Status.Door != "CLOSED" {
		t.Errorf("door = %q, want CLOSED", decoded.Status.Door)
	}
	if !decoded.Status.Confirmed {
		t.Error("expected confirmed")
	}
	if decoded.Status.Counts.Closed != 2 {
		t.Errorf("closed count = %d, want 2", decoded.Status.Counts.Closed)
	}
	if decoded.Status.Notifications.Sent != 1 {
		t.Errorf("sent = %d, want 1", decoded.Status.Notifications.Sent)
	}
	if decoded.Status.UptimeSeconds < 59 {
		t.Errorf("uptime = %d, want about 60", decoded.Status.UptimeSeconds)
	}
}

func TestHandleIndexHTML(t *testing.T) {
	srv := New(":0", newTestTracker())

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "CLOSED") {
		t.Error("page should show the door state")
	}
}

func TestHandleIndexNotFound(t *testing.T) {
	srv := New(":0", newTestTracker())

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServeReturnsNilAfterShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	srv := New(ln.Addr().String(), newTestTracker())

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ln) }()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve after graceful shutdown = %v, want nil", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after shutdown")
	}
}

func TestJSONBeforeFirstSample(t *testing.T) {
	tr := status.NewTracker(time.Now(), status.Config{})
	srv := New(":0", tr)

	rec := httptest.NewRecorder()
	srv.httpServer.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/index.json", nil))

	var decoded StatusJSON
	if err := json.Unmarshal(rec.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded.Status.Door != "UNKNOWN" {
		t.Errorf("door = %q, want UNKNOWN before first sample", decoded.Status.Door)
	}
	if decoded.Status.Confirmed {
		t.Error("should not be confirmed before first sample")
	}
}
