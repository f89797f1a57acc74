package store

import (
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/cockpit-tools/copilot-cockpit-tui/internal/logger"
)

// EventType defines the type of store event.
type EventType int

const (
	// EventChanged indicates that the index was modified externally.
	EventChanged EventType = iota
	// EventError indicates a watcher failure.
	EventError
)

// Event represents a store change notification.
type Event struct {
	Type  EventType
	Error error
}

// Events returns the event channel for subscribing to store changes.
func (s *Store) Events() <-chan Event {
	return s.eventChan
}

// startWatcher watches the storage root so external edits of the index
// (another process, a hand edit) are reflected in the UI.
func (s *Store) startWatcher() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return &PersistenceError{Op: "start watcher", Err: err}
	}
	s.watcher = watcher

	if err := watcher.Add(s.root); err != nil {
		if closeErr := watcher.Close(); closeErr != nil {
			logger.Error("failed to close watcher", "error", closeErr)
		}
		return &PersistenceError{Op: "watch storage root", Err: err}
	}

	go s.watchLoop()
	return nil
}

// watchLoop handles file system events with debouncing.
func (s *Store) watchLoop() {
	const debounceInterval = 100 * time.Millisecond

	for {
		select {
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}

			// Only the index commits visibility changes.
			if filepath.Base(event.Name) != indexFileName {
				continue
			}

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				s.mu.Lock()
				if s.debounceTimer != nil {
					s.debounceTimer.Stop()
				}
				s.debounceTimer = time.AfterFunc(debounceInterval, func() {
					s.sendEvent(Event{Type: EventChanged})
				})
				s.mu.Unlock()
			}

		case err, ok := <-s.watcher.Errors:
			if !ok {
				return
			}
			s.sendEvent(Event{Type: EventError, Error: err})

		case <-s.stopChan:
			return
		}
	}
}

// sendEvent sends an event to the event channel non-blocking.
func (s *Store) sendEvent(event Event) {
	select {
	case s.eventChan <- event:
	default:
		// Channel full, drop oldest event
		select {
		case <-s.eventChan:
		default:
		}
		select {
		case s.eventChan <- event:
		default:
		}
	}
}

// Close stops the file watcher and cleans up resources.
func (s *Store) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.stopChan)

		s.mu.Lock()
		if s.debounceTimer != nil {
			s.debounceTimer.Stop()
		}
		s.mu.Unlock()

		if s.watcher != nil {
			err = s.watcher.Close()
		}
	})
	return err
}
