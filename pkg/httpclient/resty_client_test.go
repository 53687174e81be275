package httpclient

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRestyClientExecuteSendsBodyAndHeaders(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("expected PUT, got %s", r.Method)
		}
		if got := r.Header.Get("X-Call"); got != "c" {
			t.Errorf("missing call header, got %q", got)
		}
		raw, _ := io.ReadAll(r.Body)
		if string(raw) != `{"a":1}` {
			t.Errorf("unexpected body %q", raw)
		}
		w.Header().Set("X-Echo", "yes")
		w.WriteHeader(http.StatusAccepted)
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	c := NewRestyClientWithOptions(Options{Timeout: 2 * time.Second})
	resp, err := c.Execute(context.Background(), http.MethodPut, srv.URL, map[string]string{"X-Call": "c"}, []byte(`{"a":1}`))
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.StatusCode() != http.StatusAccepted {
		t.Fatalf("expected 202, got %d", resp.StatusCode())
	}
	if string(resp.Body()) != "ok" {
		t.Fatalf("unexpected body %q", resp.Body())
	}
	if resp.Header().Get("X-Echo") != "yes" {
		t.Fatalf("response header not forwarded")
	}
}

func TestRestyClientReturnsErrorStatusWithoutError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	resp, err := NewRestyClientWithOptions(Options{Timeout: time.Second}).
		Execute(context.Background(), http.MethodDelete, srv.URL, nil, nil)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if resp.StatusCode() != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.StatusCode())
	}
}

func TestRestyClientUnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewRestyClientWithOptions(Options{})
	if _, err := c.Execute(context.Background(), http.MethodGet, url, nil, nil); err == nil {
		t.Fatalf("expected transport error for closed server")
	}
}
