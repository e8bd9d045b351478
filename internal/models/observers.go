package models

import (
	"sync"

	"gorm.io/gorm"
)

// Action describes what happened to a record when observers are notified.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
	ActionDeleted Action = "deleted"
)

// Post-commit observers. Session callbacks invoke every registered observer
// after a successful write, which is how cache invalidation and audit logging
// are wired in without the models knowing about either.
type (
	EventObserver func(e *Event, action Action)
	NewsObserver  func(n *News, action Action)
)

var (
	observerMu     sync.RWMutex
	eventObservers []EventObserver
	newsObservers  []NewsObserver
)

func RegisterEventObserver(fn EventObserver) {
	observerMu.Lock()
	defer observerMu.Unlock()
	eventObservers = append(eventObservers, fn)
}

func RegisterNewsObserver(fn NewsObserver) {
	observerMu.Lock()
	defer observerMu.Unlock()
	newsObservers = append(newsObservers, fn)
}

// ResetObservers drops all registered observers. Test hook.
func ResetObservers() {
	observerMu.Lock()
	defer observerMu.Unlock()
	eventObservers = nil
	newsObservers = nil
}

func notifyEvent(e *Event, action Action) {
	observerMu.RLock()
	defer observerMu.RUnlock()
	for _, fn := range eventObservers {
		fn(e, action)
	}
}

func notifyNews(n *News, action Action) {
	observerMu.RLock()
	defer observerMu.RUnlock()
	for _, fn := range newsObservers {
		fn(n, action)
	}
}

// RegisterNotifyCallbacks hooks observer notification into the session
// pipeline after the per-write transaction has settled. A failed or
// rolled-back write never reaches an observer.
func RegisterNotifyCallbacks(db *gorm.DB) error {
	if err := db.Callback().Create().
		After("gorm:commit_or_rollback_transaction").
		Register("afisha:notify_created", notifyAfter(ActionCreated)); err != nil {
		return err
	}
	if err := db.Callback().Update().
		After("gorm:commit_or_rollback_transaction").
		Register("afisha:notify_updated", notifyAfter(ActionUpdated)); err != nil {
		return err
	}
	return db.Callback().Delete().
		After("gorm:commit_or_rollback_transaction").
		Register("afisha:notify_deleted", notifyAfter(ActionDeleted))
}

func notifyAfter(action Action) func(*gorm.DB) {
	return func(db *gorm.DB) {
		if db.Error != nil || db.RowsAffected == 0 {
			return
		}
		switch v := db.Statement.Dest.(type) {
		case *Event:
			notifyEvent(v, action)
		case *News:
			notifyNews(v, action)
		}
	}
}
