package sse

import (
	"testing"
)

func TestHubBroadcastAndUserScope(t *testing.T) {
	h := NewHub(nil)
	a := NewClient("c1", "user-a")
	b := NewClient("c2", "user-b")
	h.Register(a)
	h.Register(b)
	if h.Count() != 2 {
		t.Fatalf("expected 2 clients, got %d", h.Count())
	}

	h.Publish("po.created", map[string]string{"id": "po-1"})
	for _, c := range []*Client{a, b} {
		ev := <-c.Events
		if ev.EventType != "po.created" || ev.Data != `{"id":"po-1"}` {
			t.Errorf("%s: unexpected event %+v", c.ID, ev)
		}
	}

	h.PublishToUser("user-a", "session.signed_out", map[string]string{"user_id": "user-a"})
	select {
	case ev := <-a.Events:
		if ev.EventType != "session.signed_out" {
			t.Errorf("unexpected event %s", ev.EventType)
		}
	default:
		t.Fatal("expected user-a to receive session event")
	}
	select {
	case ev := <-b.Events:
		t.Fatalf("user-b should not receive %s", ev.EventType)
	default:
	}

	h.Unregister("c1")
	if _, ok := <-a.Events; ok {
		t.Error("expected channel closed after unregister")
	}
	if h.Count() != 1 {
		t.Errorf("expected 1 client, got %d", h.Count())
	}
}

func TestHubSkipsFullBuffer(t *testing.T) {
	h := NewHub(nil)
	c := NewClient("c1", "u")
	h.Register(c)
	for i := 0; i < clientBuffer+5; i++ {
		h.Publish("tick", i)
	}
	if len(c.Events) != clientBuffer {
		t.Errorf("expected buffer to hold %d events, got %d", clientBuffer, len(c.Events))
	}
}
