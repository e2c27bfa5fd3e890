package openrouter

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewClientWithoutKey(t *testing.T) {
	t.Parallel()

	if c := NewClient(Config{APIKey: " "}); c != nil {
		t.Fatal("expected nil client without api key")
	}
}

func TestNewRequiresModel(t *testing.T) {
	t.Parallel()

	cfg := &Config{APIKey: "k", Model: " "}
	if _, err := cfg.New(context.Background()); err == nil {
		t.Fatal("expected error without model")
	}
}

func TestProbe(t *testing.T) {
	t.Parallel()

	var gotPath, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"gpt-4","object":"model","created":1687882411,"owned_by":"openai"}`)
	}))
	t.Cleanup(server.Close)

	err := Probe(context.Background(), Config{BaseURL: server.URL + "/v1/", APIKey: "secret", Model: "gpt-4"})
	if err != nil {
		t.Fatalf("Probe() error = %v", err)
	}
	if gotPath != "/v1/models/gpt-4" {
		t.Fatalf("unexpected path: %s", gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("unexpected auth header: %s", gotAuth)
	}
}

func TestProbeUnknownModel(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"error":{"message":"model not found","type":"invalid_request_error"}}`)
	}))
	t.Cleanup(server.Close)

	err := Probe(context.Background(), Config{BaseURL: server.URL, APIKey: "k", Model: "gpt-9"})
	if err == nil {
		t.Fatal("expected probe error for unknown model")
	}
}
