// Package store provides append-only versioned storage for derived
// artifacts attached to program nodes. Each concern (generated code,
// dependency sets, slice results, symbol tables) gets its own store,
// created lazily by whichever component first writes to it.
package store

import "errors"

// ErrNotFound indicates a store has never been written.
var ErrNotFound = errors.New("store: no version recorded")

// Store is an append-only log of payload snapshots. Versions are
// immutable once appended; readers only ever see the latest one.
type Store[T any] struct {
	versions []T
}

// New creates an empty store.
func New[T any]() *Store[T] {
	return &Store[T]{}
}

// AddVersion appends payload as the new current version.
func (s *Store[T]) AddVersion(payload T) {
	s.versions = append(s.versions, payload)
}

// Current returns the latest payload. It returns ErrNotFound if the
// store has never been written, so callers can distinguish "store
// absent" from "store present but empty".
func (s *Store[T]) Current() (T, error) {
	if len(s.versions) == 0 {
		var zero T
		return zero, ErrNotFound
	}
	return s.versions[len(s.versions)-1], nil
}

// Len reports the total number of versions recorded.
func (s *Store[T]) Len() int {
	return len(s.versions)
}
