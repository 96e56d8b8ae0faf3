// Package marker defines the pane-scoped launch marker side-channel.
package marker

import (
	"context"
	"errors"
)

// ErrNoMarker is returned when a pane has no recorded marker.
var ErrNoMarker = errors.New("no marker recorded for pane")

// Marker is the pair a launch hook records against a pane: when the session
// started and which project it was started from. It is written once at
// launch and read as-is afterwards.
type Marker struct {
	StartTS int64  // milliseconds since epoch
	Project string // absolute project path, matched verbatim
}

// Store persists markers keyed by an opaque pane identity. Implementations
// return ErrNoMarker from Get when the pane has no complete marker.
type Store interface {
	Get(ctx context.Context, pane string) (Marker, error)
	Set(ctx context.Context, pane string, m Marker) error
	Clear(ctx context.Context, pane string) error
}

// MemStore keeps markers in a map. It backs tests and single-process use;
// it is not safe for concurrent access.
type MemStore struct {
	markers map[string]Marker
}

// NewMemStore returns an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{markers: make(map[string]Marker)}
}

// Get returns the marker for pane, or ErrNoMarker.
func (s *MemStore) Get(_ context.Context, pane string) (Marker, error) {
	m, ok := s.markers[pane]
	if !ok {
		return Marker{}, ErrNoMarker
	}
	return m, nil
}

// Set records m for pane, replacing any previous marker.
func (s *MemStore) Set(_ context.Context, pane string, m Marker) error {
	s.markers[pane] = m
	return nil
}

// Clear removes the marker for pane. Clearing an absent marker is not an
// error.
func (s *MemStore) Clear(_ context.Context, pane string) error {
	delete(s.markers, pane)
	return nil
}
