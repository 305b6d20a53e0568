package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"ridebooking/internal/types"
)

type fakeSink struct {
	err   error
	calls int
}

func (f *fakeSink) Notify(_ context.Context, _ types.ID, _, _, _ string) error {
	f.calls++
	return f.err
}

func TestMulti_FallsBackToNextSink(t *testing.T) {
	failing := &fakeSink{err: errors.New("down")}
	working := &fakeSink{}
	m := Multi{failing, working}

	if err := m.Notify(context.Background(), "d1", "tok", "t", "b"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if failing.calls != 1 || working.calls != 1 {
		t.Fatalf("calls = %d/%d, want 1/1", failing.calls, working.calls)
	}
}

func TestMulti_StopsAtFirstSuccess(t *testing.T) {
	first := &fakeSink{}
	second := &fakeSink{}
	m := Multi{first, second}

	if err := m.Notify(context.Background(), "d1", "tok", "t", "b"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if second.calls != 0 {
		t.Fatalf("second sink called %d times after first succeeded", second.calls)
	}
}

func TestMulti_AllFail(t *testing.T) {
	sentinel := errors.New("last failure")
	m := Multi{&fakeSink{err: errors.New("first")}, &fakeSink{err: sentinel}}
	if err := m.Notify(context.Background(), "d1", "tok", "t", "b"); !errors.Is(err, sentinel) {
		t.Fatalf("expected last error, got %v", err)
	}
}

func TestFCMClient_Notify(t *testing.T) {
	var got map[string]any
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewFCMClient(srv.URL, "secret")
	if err := c.Notify(context.Background(), "d1", "tok-1", "New Ride Request", "Pickup: A, Drop: B"); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if auth != "Bearer secret" {
		t.Errorf("auth header = %q", auth)
	}
	msg, _ := got["message"].(map[string]any)
	if msg == nil || msg["token"] != "tok-1" {
		t.Fatalf("payload = %v", got)
	}
	notif, _ := msg["notification"].(map[string]any)
	if notif == nil || notif["title"] != "New Ride Request" {
		t.Fatalf("notification = %v", msg)
	}
}

func TestFCMClient_ErrorStatuses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	c := NewFCMClient(srv.URL, "bad")
	if err := c.Notify(context.Background(), "d1", "tok-1", "t", "b"); err == nil {
		t.Fatal("expected error on 401")
	}
	if err := c.Notify(context.Background(), "d1", "", "t", "b"); err == nil {
		t.Fatal("expected error on empty token")
	}
}

func TestWSRegistry_NoSession(t *testing.T) {
	r := NewWSRegistry()
	if err := r.Notify(context.Background(), "d1", "tok", "t", "b"); !errors.Is(err, ErrNoSession) {
		t.Fatalf("expected ErrNoSession, got %v", err)
	}
}
