package field

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// mockNotifier is a test implementation of Notifier
type mockNotifier struct {
	id          string
	notifyFunc  func(context.Context, BoardEvent) error
	closeFunc   func() error
	mu          sync.Mutex
	events      []BoardEvent
	notifyCount int
}

func (m *mockNotifier) ID() string   { return m.id }
func (m *mockNotifier) Type() string { return "mock" }
func (m *mockNotifier) Notify(ctx context.Context, event BoardEvent) error {
	m.mu.Lock()
	m.notifyCount++
	m.events = append(m.events, event)
	m.mu.Unlock()
	if m.notifyFunc != nil {
		return m.notifyFunc(ctx, event)
	}
	return nil
}
func (m *mockNotifier) Close() error {
	if m.closeFunc != nil {
		return m.closeFunc()
	}
	return nil
}

func (m *mockNotifier) getNotifyCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.notifyCount
}

func (m *mockNotifier) getEvents() []BoardEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]BoardEvent, len(m.events))
	copy(out, m.events)
	return out
}

// waitFor polls cond until it returns true or the deadline passes.
func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("Condition not met before deadline")
}

func TestNewNotificationManager(t *testing.T) {
	nm := NewNotificationManager()
	if nm == nil {
		t.Fatal("NewNotificationManager returned nil")
	}

	notifiers := nm.ListNotifiers()
	if len(notifiers) != 0 {
		t.Errorf("Expected empty notifiers list, got %d", len(notifiers))
	}

	if err := nm.Close(); err != nil {
		t.Errorf("Close returned error: %v", err)
	}
}

func TestNotificationManager_RegisterNotifier(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	notifier := &mockNotifier{id: "test-1"}
	if err := nm.RegisterNotifier(notifier); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}

	// Duplicate registration
	if err := nm.RegisterNotifier(&mockNotifier{id: "test-1"}); err == nil {
		t.Error("Expected error for duplicate registration")
	}

	// Nil notifier
	if err := nm.RegisterNotifier(nil); err == nil {
		t.Error("Expected error for nil notifier")
	}

	// Empty ID
	if err := nm.RegisterNotifier(&mockNotifier{id: ""}); err == nil {
		t.Error("Expected error for empty ID")
	}

	nm.RegisterNotifier(&mockNotifier{id: "test-2"})
	if len(nm.ListNotifiers()) != 2 {
		t.Errorf("Expected 2 notifiers, got %d", len(nm.ListNotifiers()))
	}
}

func TestNotificationManager_UnregisterNotifier(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	if err := nm.UnregisterNotifier("non-existent"); err == nil {
		t.Error("Expected error for non-existent notifier")
	}

	closed := false
	notifier := &mockNotifier{id: "test-1", closeFunc: func() error {
		closed = true
		return nil
	}}
	nm.RegisterNotifier(notifier)

	if err := nm.UnregisterNotifier("test-1"); err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if !closed {
		t.Error("Expected notifier to be closed on unregister")
	}
	if _, exists := nm.GetNotifier("test-1"); exists {
		t.Error("Expected notifier to be gone")
	}
}

func TestNotificationManager_Notify(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	n1 := &mockNotifier{id: "n1"}
	n2 := &mockNotifier{id: "n2"}
	nm.RegisterNotifier(n1)
	nm.RegisterNotifier(n2)

	event := BoardEvent{GameID: "g1", Kind: EventInsert, Index: 0}

	if err := nm.Notify(context.Background(), event, []string{"n1", "n2"}); err != nil {
		t.Errorf("Notify failed: %v", err)
	}
	if n1.getNotifyCount() != 1 || n2.getNotifyCount() != 1 {
		t.Errorf("Expected both notifiers hit once, got %d and %d", n1.getNotifyCount(), n2.getNotifyCount())
	}

	// Empty target list is a no-op
	if err := nm.Notify(context.Background(), event, nil); err != nil {
		t.Errorf("Expected nil error for empty targets, got %v", err)
	}

	// Unknown target is an error
	if err := nm.Notify(context.Background(), event, []string{"missing"}); err == nil {
		t.Error("Expected error for unknown notifier")
	}

	// A failing notifier surfaces without blocking the others
	failing := &mockNotifier{id: "bad", notifyFunc: func(context.Context, BoardEvent) error {
		return errors.New("boom")
	}}
	nm.RegisterNotifier(failing)
	if err := nm.Notify(context.Background(), event, []string{"bad", "n1"}); err == nil {
		t.Error("Expected error from failing notifier")
	}
	if n1.getNotifyCount() != 2 {
		t.Errorf("Expected healthy notifier still hit, got %d", n1.getNotifyCount())
	}
}

func TestNotificationManager_Enqueue(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	notifier := &mockNotifier{id: "n1"}
	nm.RegisterNotifier(notifier)

	nm.Enqueue(BoardEvent{GameID: "g1", Kind: EventRemove, Index: 2}, []string{"n1"})

	waitFor(t, func() bool { return notifier.getNotifyCount() == 1 })

	events := notifier.getEvents()
	if events[0].Kind != EventRemove || events[0].Index != 2 {
		t.Errorf("Expected remove event at index 2, got %+v", events[0])
	}
}

func TestNotificationManager_EnqueueAfterClose(t *testing.T) {
	nm := NewNotificationManager()
	nm.Close()

	// Must not panic or block
	nm.Enqueue(BoardEvent{GameID: "g1", Kind: EventInsert}, []string{"n1"})
}

func TestNotificationManager_CloseIsIdempotent(t *testing.T) {
	nm := NewNotificationManager()
	if err := nm.Close(); err != nil {
		t.Errorf("First close failed: %v", err)
	}
	if err := nm.Close(); err != nil {
		t.Errorf("Second close failed: %v", err)
	}
}

func TestGame_NotificationFlow(t *testing.T) {
	nm := NewNotificationManager()
	defer nm.Close()

	notifier := &mockNotifier{id: "n1"}
	nm.RegisterNotifier(notifier)

	game, err := NewGame("g1", nil, startTokens(t, 1, 2, 3, 1))
	if err != nil {
		t.Fatalf("NewGame failed: %v", err)
	}
	game.SetNotificationManager(nm, []string{"n1"})

	// One insert plus the fusion it triggers
	if err := game.Insert(Accelerator, 0); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	waitFor(t, func() bool { return notifier.getNotifyCount() == 2 })

	events := notifier.getEvents()
	if events[0].Kind != EventInsert || events[0].GameID != "g1" {
		t.Errorf("Expected insert event first, got %+v", events[0])
	}
	if events[0].Token == nil || events[0].Token.Kind != KindAccelerator {
		t.Errorf("Expected accelerator token on insert event, got %+v", events[0].Token)
	}
	if events[1].Kind != EventReaction {
		t.Errorf("Expected reaction event second, got %+v", events[1])
	}
	if events[1].CCWIndex != 4 || events[1].CenterIndex != 0 || events[1].CWIndex != 1 || events[1].ResultIndex != 0 {
		t.Errorf("Expected reaction indices (4 0 1 -> 0), got %+v", events[1])
	}
	if events[1].Result == nil || events[1].Result.Number != 2 {
		t.Errorf("Expected fusion result #2, got %+v", events[1].Result)
	}

	// Detaching stops the flow
	game.SetNotificationManager(nil, nil)
	if err := game.Remove(0); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if notifier.getNotifyCount() != 2 {
		t.Errorf("Expected no events after detach, got %d", notifier.getNotifyCount())
	}
}
