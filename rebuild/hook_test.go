package rebuild

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestHookTrigger(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		calls.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := NewHook(srv.URL, nil).Trigger(context.Background()); err != nil {
		t.Fatalf("Trigger failed: %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("webhook called %d times, want 1", calls.Load())
	}
}

func TestHookNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	if err := NewHook(srv.URL, nil).Trigger(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestHookNotConfigured(t *testing.T) {
	h := NewHook("  ", nil)
	if h.Configured() {
		t.Error("blank url should not be configured")
	}
	if err := h.Trigger(context.Background()); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Trigger() = %v, want ErrNotConfigured", err)
	}
}
