package logging

import (
	"context"
	"sync"
	"testing"
	"time"
)

type collectSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *collectSink) Write(event Event) error {
	s.mu.Lock()
	s.events = append(s.events, event)
	s.mu.Unlock()
	return nil
}

func (s *collectSink) Close(context.Context) error { return nil }

func (s *collectSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("condition not reached before deadline")
}

func TestRouterForwardsToEnabledSinks(t *testing.T) {
	sink := &collectSink{}
	cfg := DefaultConfig()
	cfg.EnabledSinks = []string{"memory"}
	router, err := NewRouter(cfg, nil, nil, map[string]Sink{"memory": sink})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		router.Close(ctx)
	}()

	router.Publish(context.Background(), Event{Type: "test.event", Tick: 7, Severity: SeverityInfo})

	waitFor(t, func() bool { return len(sink.snapshot()) == 1 })
	got := sink.snapshot()[0]
	if got.Type != "test.event" || got.Tick != 7 {
		t.Fatalf("unexpected event: %+v", got)
	}
	if got.Time.IsZero() {
		t.Fatalf("expected router to stamp event time")
	}
}

func TestRouterFiltersBelowMinimumSeverity(t *testing.T) {
	sink := &collectSink{}
	cfg := DefaultConfig()
	cfg.EnabledSinks = []string{"memory"}
	cfg.MinimumSeverity = SeverityWarn
	router, err := NewRouter(cfg, nil, nil, map[string]Sink{"memory": sink})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	router.Publish(context.Background(), Event{Type: "low", Severity: SeverityInfo})
	router.Publish(context.Background(), Event{Type: "high", Severity: SeverityError})

	waitFor(t, func() bool { return len(sink.snapshot()) == 1 })
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := router.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	events := sink.snapshot()
	if len(events) != 1 || events[0].Type != "high" {
		t.Fatalf("expected only the error event, got %+v", events)
	}
}

func TestRouterMergesConfiguredFields(t *testing.T) {
	sink := &collectSink{}
	cfg := DefaultConfig()
	cfg.EnabledSinks = []string{"memory"}
	cfg.Fields = map[string]any{"zone": "starter"}
	router, err := NewRouter(cfg, nil, nil, map[string]Sink{"memory": sink})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		router.Close(ctx)
	}()

	router.Publish(context.Background(), Event{Type: "test.event", Severity: SeverityInfo})

	waitFor(t, func() bool { return len(sink.snapshot()) == 1 })
	got := sink.snapshot()[0]
	if got.Extra["zone"] != "starter" {
		t.Fatalf("expected configured field, got %+v", got.Extra)
	}
}

func TestRouterIgnoresDisabledSinks(t *testing.T) {
	enabled := &collectSink{}
	disabled := &collectSink{}
	cfg := DefaultConfig()
	cfg.EnabledSinks = []string{"a"}
	router, err := NewRouter(cfg, nil, nil, map[string]Sink{"a": enabled, "b": disabled})
	if err != nil {
		t.Fatalf("NewRouter: %v", err)
	}

	router.Publish(context.Background(), Event{Type: "test.event", Severity: SeverityInfo})

	waitFor(t, func() bool { return len(enabled.snapshot()) == 1 })
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	router.Close(ctx)
	if len(disabled.snapshot()) != 0 {
		t.Fatalf("disabled sink received events")
	}
}
