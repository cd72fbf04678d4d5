package net

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSendRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Content-Type") != "application/ssml+xml" {
			t.Errorf("unexpected content type %q", r.Header.Get("Content-Type"))
		}
		if r.Header.Get("X-Test") != "yes" {
			t.Errorf("missing custom header")
		}
		b, _ := io.ReadAll(r.Body)
		w.WriteHeader(http.StatusAccepted)
		w.Write(append([]byte("echo:"), b...))
	}))
	defer srv.Close()

	resp, err := SendRequest(context.Background(), nil, http.MethodPost, srv.URL,
		[]byte("<speak/>"), ContentTypeSSML, map[string]string{"X-Test": "yes"})
	if err != nil {
		t.Fatalf("Error: %v", err)
	}
	if !resp.OK() || resp.StatusCode != http.StatusAccepted {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if string(resp.Body) != "echo:<speak/>" {
		t.Fatalf("unexpected body %q", resp.Body)
	}
}

func TestSendRequestNonSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	defer srv.Close()

	resp, err := SendRequest(context.Background(), srv.Client(), http.MethodGet, srv.URL,
		nil, ContentTypeNone, nil)
	if err != nil {
		t.Fatalf("non-2xx must not be a transport error: %v", err)
	}
	if resp.OK() || resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
}

func TestSendRequestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := SendRequest(ctx, nil, http.MethodGet, "http://127.0.0.1:1", nil, ContentTypeNone, nil); err == nil {
		t.Fatalf("expected error on cancelled context")
	}
}
