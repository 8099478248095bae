package wyscout

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/datametrics/matchdesk/internal/platform/cache"
	"github.com/datametrics/matchdesk/internal/platform/resilience"
	"github.com/datametrics/matchdesk/internal/usecase"
)

func newTestClient(t *testing.T, handler http.Handler, breaker resilience.CircuitBreakerConfig) (*Client, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := NewClient(ClientConfig{
		HTTPClient:     server.Client(),
		BaseURLV2:      server.URL,
		BaseURLV3:      server.URL,
		Username:       "user",
		Password:       "secret",
		MaxRetries:     0,
		CircuitBreaker: breaker,
		Cache:          cache.NewStore(time.Minute),
	})
	return client, server
}

func TestClient_SendsBasicAuth(t *testing.T) {
	t.Parallel()

	var gotUser, gotPass string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, gotPass, _ = r.BasicAuth()
		_, _ = w.Write([]byte(`[]`))
	})
	client, _ := newTestClient(t, handler, resilience.CircuitBreakerConfig{})

	if _, err := client.FetchResource(context.Background(), "/areas", nil, APIv2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotUser != "user" || gotPass != "secret" {
		t.Fatalf("basic auth not forwarded: user=%q pass=%q", gotUser, gotPass)
	}
}

func TestClient_Non2xxSurfacesProviderError(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("access denied, not json"))
	})
	client, _ := newTestClient(t, handler, resilience.CircuitBreakerConfig{})

	_, err := client.FetchResource(context.Background(), "/players/search", nil, APIv2)
	var providerErr *ProviderError
	if !errors.As(err, &providerErr) {
		t.Fatalf("expected *ProviderError, got %v", err)
	}
	if providerErr.StatusCode != http.StatusForbidden {
		t.Fatalf("unexpected status: got=%d want=403", providerErr.StatusCode)
	}
	if string(providerErr.Body) != "access denied, not json" {
		t.Fatalf("raw body not preserved: %q", providerErr.Body)
	}
}

func TestClient_CircuitOpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	client, _ := newTestClient(t, handler, resilience.CircuitBreakerConfig{
		Enabled:          true,
		FailureThreshold: 2,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})

	for i := 0; i < 2; i++ {
		if _, err := client.FetchResource(context.Background(), "/areas", nil, APIv2); err == nil {
			t.Fatal("expected provider failure")
		}
	}

	_, err := client.FetchResource(context.Background(), "/areas", nil, APIv2)
	if !errors.Is(err, usecase.ErrDependencyUnavailable) {
		t.Fatalf("expected dependency unavailable after circuit opened, got %v", err)
	}
}

func TestClient_SeasonFixturesCached(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/seasons/188945/fixtures") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		calls.Add(1)
		_, _ = w.Write([]byte(`{"matches":[{"matchId":1,"dateutc":"2024-05-01 14:00:00"}]}`))
	})
	client, _ := newTestClient(t, handler, resilience.CircuitBreakerConfig{})

	for i := 0; i < 3; i++ {
		fixtures, err := client.SeasonFixtures(context.Background(), 188945)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(fixtures) != 1 || fixtures[0].MatchID != 1 {
			t.Fatalf("unexpected fixtures: %+v", fixtures)
		}
	}

	if got := calls.Load(); got != 1 {
		t.Fatalf("season schedule fetched %d times, want 1", got)
	}
}

func TestClient_SearchPlayersSkipsEntriesWithoutID(t *testing.T) {
	t.Parallel()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "messi" {
			t.Errorf("unexpected query: %q", got)
		}
		_, _ = w.Write([]byte(`{"players":[{"wyId":333,"shortName":"L. Messi"},{"shortName":"ghost entry"}]}`))
	})
	client, _ := newTestClient(t, handler, resilience.CircuitBreakerConfig{})

	players, err := client.SearchPlayers(context.Background(), "messi")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(players) != 1 {
		t.Fatalf("expected id-less entries skipped, got=%d", len(players))
	}
	if players[0].ID != 333 {
		t.Fatalf("unexpected player id: got=%d", players[0].ID)
	}
}

func TestClient_RetriesTransientStatusOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	handler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[]`))
	})

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := NewClient(ClientConfig{
		HTTPClient: server.Client(),
		BaseURLV2:  server.URL,
		Username:   "user",
		Password:   "secret",
		MaxRetries: 1,
	})

	if _, err := client.FetchResource(context.Background(), "/areas", nil, APIv2); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("expected 2 attempts, got=%d", got)
	}
}
