package field

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"
)

// EventKind identifies which structural change a BoardEvent describes.
type EventKind string

const (
	EventInsert   EventKind = "insert"
	EventRemove   EventKind = "remove"
	EventReaction EventKind = "reaction"
)

// BoardEvent is the wire form of a listener callback: one structural change
// to a game's ring, with the exact index semantics of the Listener
// protocol. Index and Token are set for inserts, Index for removals, and
// the reaction fields for fusions (the three consumed indices are
// pre-mutation positions, ResultIndex is post-mutation).
type BoardEvent struct {
	GameID    GameID    `json:"game_id"`
	Kind      EventKind `json:"kind"`
	Timestamp int64     `json:"timestamp"`

	Index int    `json:"index"`
	Token *Token `json:"token,omitempty"`

	CCWIndex    int    `json:"ccw_index,omitempty"`
	CenterIndex int    `json:"center_index,omitempty"`
	CWIndex     int    `json:"cw_index,omitempty"`
	Result      *Token `json:"result,omitempty"`
	ResultIndex int    `json:"result_index,omitempty"`
}

// JSON returns the board event as JSON bytes.
func (e BoardEvent) JSON() ([]byte, error) {
	return json.Marshal(e)
}

// Notifier is the interface that all notification channels must implement.
type Notifier interface {
	// ID returns a unique identifier for this notifier.
	ID() string

	// Type returns the type of notifier (e.g., "webhook", "websocket").
	Type() string

	// Notify sends a board event. Returns an error if delivery fails. The
	// context can be used for cancellation and timeout.
	Notify(ctx context.Context, event BoardEvent) error

	// Close closes the notifier and releases any resources.
	Close() error
}

// notificationJob is one queued delivery.
type notificationJob struct {
	Event       BoardEvent
	NotifierIDs []string
}

// NotificationManager owns the registered notifiers and routes board events
// to them asynchronously, off the game's mutating call path. Listener
// callbacks stay synchronous inside the engine; this layer is where
// external delivery, retry, and backoff live.
type NotificationManager struct {
	mu        sync.RWMutex
	notifiers map[string]Notifier
	jobs      chan notificationJob
	closed    bool
	wg        sync.WaitGroup
	log       Logger
}

// NewNotificationManager creates a notification manager with a no-op logger.
func NewNotificationManager() *NotificationManager {
	return NewNotificationManagerWithLogger(NewNoOpLogger())
}

// NewNotificationManagerWithLogger creates a notification manager that logs
// delivery failures through the given logger.
func NewNotificationManagerWithLogger(log Logger) *NotificationManager {
	if log == nil {
		log = NewNoOpLogger()
	}
	mgr := &NotificationManager{
		notifiers: make(map[string]Notifier),
		jobs:      make(chan notificationJob, 1024),
		log:       log,
	}
	mgr.startWorkers(1)
	return mgr
}

// RegisterNotifier registers a notifier with the manager.
func (nm *NotificationManager) RegisterNotifier(notifier Notifier) error {
	if notifier == nil {
		return fmt.Errorf("notifier cannot be nil")
	}

	id := notifier.ID()
	if id == "" {
		return fmt.Errorf("notifier ID cannot be empty")
	}

	nm.mu.Lock()
	defer nm.mu.Unlock()

	if _, exists := nm.notifiers[id]; exists {
		return fmt.Errorf("notifier with ID %s already exists", id)
	}

	nm.notifiers[id] = notifier
	return nil
}

// UnregisterNotifier closes and removes a notifier.
func (nm *NotificationManager) UnregisterNotifier(id string) error {
	nm.mu.Lock()
	notifier, exists := nm.notifiers[id]
	nm.mu.Unlock()

	if !exists {
		return fmt.Errorf("notifier with ID %s not found", id)
	}

	if err := notifier.Close(); err != nil {
		return fmt.Errorf("error closing notifier %s: %w", id, err)
	}

	nm.mu.Lock()
	delete(nm.notifiers, id)
	nm.mu.Unlock()

	return nil
}

// GetNotifier retrieves a notifier by ID.
func (nm *NotificationManager) GetNotifier(id string) (Notifier, bool) {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	notifier, exists := nm.notifiers[id]
	return notifier, exists
}

// ListNotifiers returns the IDs of all registered notifiers.
func (nm *NotificationManager) ListNotifiers() []string {
	nm.mu.RLock()
	defer nm.mu.RUnlock()
	ids := make([]string, 0, len(nm.notifiers))
	for id := range nm.notifiers {
		ids = append(ids, id)
	}
	return ids
}

// Enqueue queues a board event for asynchronous delivery. Non-blocking:
// if the queue is full the event is dropped and logged.
func (nm *NotificationManager) Enqueue(event BoardEvent, notifierIDs []string) {
	if len(notifierIDs) == 0 {
		return
	}

	nm.mu.RLock()
	closed := nm.closed
	nm.mu.RUnlock()

	if closed {
		return
	}

	select {
	case nm.jobs <- notificationJob{Event: event, NotifierIDs: notifierIDs}:
	default:
		nm.log.Warnf("notification queue full, dropping %s event for game %s", event.Kind, event.GameID)
	}
}

func (nm *NotificationManager) startWorkers(n int) {
	for i := 0; i < n; i++ {
		nm.wg.Add(1)
		go nm.worker()
	}
}

func (nm *NotificationManager) worker() {
	defer nm.wg.Done()
	for job := range nm.jobs {
		nm.dispatchJob(job)
	}
}

func (nm *NotificationManager) dispatchJob(job notificationJob) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, id := range job.NotifierIDs {
		nm.notifyWithRetry(ctx, id, job.Event)
	}
}

// notifyWithRetry attempts delivery with exponential backoff.
func (nm *NotificationManager) notifyWithRetry(ctx context.Context, notifierID string, event BoardEvent) {
	nm.mu.RLock()
	notifier, ok := nm.notifiers[notifierID]
	nm.mu.RUnlock()

	if !ok {
		nm.log.Warnf("notification failed: notifier=%s error=notifier not found", notifierID)
		return
	}

	const maxRetries = 3
	backoff := 100 * time.Millisecond

	for attempt := 0; attempt <= maxRetries; attempt++ {
		err := notifier.Notify(ctx, event)
		if err == nil {
			return
		}

		nm.log.Warnf("notification failed: notifier=%s attempt=%d error=%v", notifierID, attempt+1, err)

		if attempt == maxRetries {
			nm.log.Errorf("notification failed after %d attempts: notifier=%s", maxRetries+1, notifierID)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
			backoff *= 2
		}
	}
}

// Notify delivers a board event to the specified notifiers synchronously.
// For async processing use Enqueue instead.
func (nm *NotificationManager) Notify(ctx context.Context, event BoardEvent, notifierIDs []string) error {
	if len(notifierIDs) == 0 {
		return nil
	}

	var errs []error
	for _, id := range notifierIDs {
		nm.mu.RLock()
		notifier, exists := nm.notifiers[id]
		nm.mu.RUnlock()

		if !exists {
			errs = append(errs, fmt.Errorf("notifier %s not found", id))
			continue
		}

		if err := notifier.Notify(ctx, event); err != nil {
			errs = append(errs, fmt.Errorf("notifier %s failed: %w", id, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("notification errors: %v", errs)
	}

	return nil
}

// Close closes all registered notifiers and shuts down the workers.
func (nm *NotificationManager) Close() error {
	nm.mu.Lock()
	if nm.closed {
		nm.mu.Unlock()
		return nil
	}
	nm.closed = true
	close(nm.jobs)
	nm.mu.Unlock()

	nm.wg.Wait()

	nm.mu.Lock()
	var errs []error
	for id, notifier := range nm.notifiers {
		if err := notifier.Close(); err != nil {
			errs = append(errs, fmt.Errorf("error closing notifier %s: %w", id, err))
		}
	}
	nm.notifiers = make(map[string]Notifier)
	nm.mu.Unlock()

	if len(errs) > 0 {
		return fmt.Errorf("errors closing notifiers: %v", errs)
	}

	return nil
}

// notifyingListener bridges the synchronous Listener protocol to the
// asynchronous notification queue. It never touches the ring, satisfying
// the listener contract.
type notifyingListener struct {
	gameID      GameID
	mgr         *NotificationManager
	notifierIDs []string
}

func (nl *notifyingListener) OnInsert(index int, token Token) {
	tok := token
	nl.mgr.Enqueue(BoardEvent{
		GameID:    nl.gameID,
		Kind:      EventInsert,
		Timestamp: time.Now().Unix(),
		Index:     index,
		Token:     &tok,
	}, nl.notifierIDs)
}

func (nl *notifyingListener) OnReaction(ccwIndex, centerIndex, cwIndex int, result Token, resultIndex int) {
	res := result
	nl.mgr.Enqueue(BoardEvent{
		GameID:      nl.gameID,
		Kind:        EventReaction,
		Timestamp:   time.Now().Unix(),
		CCWIndex:    ccwIndex,
		CenterIndex: centerIndex,
		CWIndex:     cwIndex,
		Result:      &res,
		ResultIndex: resultIndex,
	}, nl.notifierIDs)
}

func (nl *notifyingListener) OnRemove(index int) {
	nl.mgr.Enqueue(BoardEvent{
		GameID:    nl.gameID,
		Kind:      EventRemove,
		Timestamp: time.Now().Unix(),
		Index:     index,
	}, nl.notifierIDs)
}
