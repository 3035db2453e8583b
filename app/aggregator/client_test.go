package aggregator

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(handler http.HandlerFunc) (*Client, *httptest.Server) {
	server := httptest.NewServer(handler)
	client := NewClient(server.URL, server.Client(), "Pulseboard Test/1.0")
	return client, server
}

func TestClient_FetchFeed(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/feed" {
			t.Errorf("Expected path /v1/feed, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "50" {
			t.Errorf("Expected limit 50, got %s", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"feed": [
				{"id": "feed_items:1", "source": "rss", "title": "First", "published_at": "2026-08-30T10:00:00Z", "score": 5.5},
				{"id": "feed_items:2", "source": "rss", "title": "Second"}
			],
			"fresh": [{"id": "feed_items:1", "source": "rss", "title": "First"}],
			"today": []
		}`))
	})
	defer server.Close()

	resp, err := client.FetchFeed(context.Background(), 50)
	if err != nil {
		t.Fatalf("FetchFeed failed: %v", err)
	}

	if len(resp.Feed) != 2 {
		t.Errorf("Expected 2 feed items, got %d", len(resp.Feed))
	}
	if len(resp.Fresh) != 1 {
		t.Errorf("Expected 1 fresh item, got %d", len(resp.Fresh))
	}
	if resp.Feed[0].ScoreValue() != 5.5 {
		t.Errorf("Expected score 5.5, got %f", resp.Feed[0].ScoreValue())
	}
	if resp.Feed[1].ScoreValue() != 0 {
		t.Errorf("Expected missing score to read as 0, got %f", resp.Feed[1].ScoreValue())
	}
}

func TestClient_FetchFeed_TransportFailure(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	defer server.Close()

	_, err := client.FetchFeed(context.Background(), 50)
	if err == nil {
		t.Fatal("Expected error for non-2xx response")
	}
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("Expected ErrUnavailable, got %v", err)
	}
}

func TestClient_FetchFeed_LogicalError(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"feed": [], "error": "scoring backend offline"}`))
	})
	defer server.Close()

	_, err := client.FetchFeed(context.Background(), 50)
	if err == nil {
		t.Fatal("Expected error for populated error field")
	}
	if !errors.Is(err, ErrLogical) {
		t.Errorf("Expected ErrLogical, got %v", err)
	}
}

func TestClient_FetchFeed_InvalidShape(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"unexpected": true}`))
	})
	defer server.Close()

	_, err := client.FetchFeed(context.Background(), 50)
	if err == nil {
		t.Fatal("Expected error for missing feed field")
	}
	// Malformed shape is treated the same as a logical upstream error
	if !errors.Is(err, ErrLogical) {
		t.Errorf("Expected ErrLogical for invalid shape, got %v", err)
	}
}

func TestClient_FetchExplore(t *testing.T) {
	client, server := newTestClient(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/explore" {
			t.Errorf("Expected path /v1/explore, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("cursor") != "abc123" {
			t.Errorf("Expected cursor abc123, got %s", r.URL.Query().Get("cursor"))
		}
		if r.URL.Query().Get("filter") != "podcast" {
			t.Errorf("Expected filter podcast, got %s", r.URL.Query().Get("filter"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"items": [{"id": "recommendation:9", "source": "tmdb", "title": "A Movie"}],
			"nextCursor": "def456",
			"hasMore": true
		}`))
	})
	defer server.Close()

	resp, err := client.FetchExplore(context.Background(), 30, "abc123", "podcast")
	if err != nil {
		t.Fatalf("FetchExplore failed: %v", err)
	}

	if len(resp.Items) != 1 {
		t.Errorf("Expected 1 item, got %d", len(resp.Items))
	}
	if resp.NextCursor != "def456" {
		t.Errorf("Expected cursor def456, got %s", resp.NextCursor)
	}
	if !resp.HasMore {
		t.Error("Expected hasMore to be true")
	}
}

func TestItem_EffectiveTimestamp(t *testing.T) {
	published := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		item Item
		want *time.Time
	}{
		{
			name: "prefers published_at",
			item: Item{
				PublishedAt: &published,
				Metadata:    map[string]any{"ingested_at": "2026-08-29T00:00:00Z"},
			},
			want: &published,
		},
		{
			name: "falls back to ingested_at",
			item: Item{
				Metadata: map[string]any{"ingested_at": "2026-08-30T10:00:00Z"},
			},
			want: &published,
		},
		{
			name: "nil when neither is present",
			item: Item{},
			want: nil,
		},
		{
			name: "nil when ingested_at is malformed",
			item: Item{Metadata: map[string]any{"ingested_at": "not-a-time"}},
			want: nil,
		},
		{
			name: "nil when ingested_at is not a string",
			item: Item{Metadata: map[string]any{"ingested_at": 12345}},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.item.EffectiveTimestamp()
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("EffectiveTimestamp() = %v, want %v", got, tt.want)
			}
			if got != nil && !got.Equal(*tt.want) {
				t.Errorf("EffectiveTimestamp() = %v, want %v", got, tt.want)
			}
		})
	}
}
