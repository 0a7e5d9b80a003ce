package events

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"alice-hq/hassil-parser/internal/fixtures"
	"alice-hq/hassil-parser/pkg/config"

	"github.com/gorilla/websocket"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server) {
	t.Helper()
	cfg := config.NewDefaultConfig().Events
	hub := NewHub(&cfg, fixtures.Logger(nil))
	srv := httptest.NewServer(hub)
	t.Cleanup(func() {
		_ = hub.Close()
		srv.Close()
	})
	return hub, srv
}

func subscribe(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/events" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial error = %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitForSubscribers(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Subscribers() != n {
		if time.Now().After(deadline) {
			t.Fatalf("expected %d subscribers, got %d", n, hub.Subscribers())
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func readEvent(t *testing.T, conn *websocket.Conn) Event {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read error = %v", err)
	}
	var event Event
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("decode error = %v", err)
	}
	return event
}

func TestHub_PublishWithoutSubscribers(t *testing.T) {
	hub, _ := newTestHub(t)
	if err := hub.Publish(context.Background(), Event{Event: TemplatesUpdated, Source: "github"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
}

func TestHub_PublishDelivers(t *testing.T) {
	hub, srv := newTestHub(t)
	first := subscribe(t, srv, "")
	second := subscribe(t, srv, "?topic=alice/ha/sync")
	waitForSubscribers(t, hub, 2)

	err := hub.Publish(context.Background(), Event{Event: TemplatesUpdated, Source: "github", RunID: "run-1"})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	for _, conn := range []*websocket.Conn{first, second} {
		event := readEvent(t, conn)
		if event.Topic != "alice/ha/sync" {
			t.Errorf("Topic = %q, want %q", event.Topic, "alice/ha/sync")
		}
		if event.Event != TemplatesUpdated || event.Source != "github" || event.RunID != "run-1" {
			t.Errorf("unexpected event %+v", event)
		}
		if event.Timestamp.IsZero() {
			t.Error("expected timestamp to be set")
		}
	}
}

func TestHub_TopicFilter(t *testing.T) {
	hub, srv := newTestHub(t)
	other := subscribe(t, srv, "?topic=alice/other")
	all := subscribe(t, srv, "")
	waitForSubscribers(t, hub, 2)

	if err := hub.Publish(context.Background(), Event{Event: TemplatesUpdated}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if err := hub.Publish(context.Background(), Event{Topic: "alice/other", Event: "other"}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	if got := readEvent(t, other); got.Event != "other" {
		t.Errorf("filtered subscriber got %q, want %q", got.Event, "other")
	}
	if got := readEvent(t, all); got.Event != TemplatesUpdated {
		t.Errorf("first event = %q, want %q", got.Event, TemplatesUpdated)
	}
	if got := readEvent(t, all); got.Event != "other" {
		t.Errorf("second event = %q, want %q", got.Event, "other")
	}
}

func TestHub_SubscriberDisconnect(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := subscribe(t, srv, "")
	waitForSubscribers(t, hub, 1)

	conn.Close()
	waitForSubscribers(t, hub, 0)

	if err := hub.Publish(context.Background(), Event{Event: TemplatesUpdated}); err != nil {
		t.Fatalf("Publish() after disconnect error = %v", err)
	}
}

func TestHub_Close(t *testing.T) {
	hub, srv := newTestHub(t)
	conn := subscribe(t, srv, "")
	waitForSubscribers(t, hub, 1)

	if err := hub.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if hub.Subscribers() != 0 {
		t.Errorf("expected no subscribers after Close, got %d", hub.Subscribers())
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); !websocket.IsCloseError(err, websocket.CloseGoingAway) {
		t.Errorf("expected going-away close, got %v", err)
	}

	err := hub.Publish(context.Background(), Event{Event: TemplatesUpdated})
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestHub_PublishCanceled(t *testing.T) {
	hub, _ := newTestHub(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hub.Publish(ctx, Event{Event: TemplatesUpdated}); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}
