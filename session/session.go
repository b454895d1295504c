//
// Tencent is pleased to support the open source community by making trpc-agenteval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agenteval-go is licensed under the Apache License Version 2.0.
//
//

// Package session stores captured agent turns grouped by session. The
// store keeps an explicit creation-ordered list of sessions and a current
// pointer, so "latest session" never depends on map iteration or key
// shape. Turns belonging to one session are never visible through
// another.
package session

import (
	"errors"
	"fmt"
	"sync"

	"trpc.group/trpc-go/trpc-agenteval-go/epochtime"
	"trpc.group/trpc-go/trpc-agenteval-go/transcript"
)

// Record is one session and its turns in insertion order.
type Record struct {
	ID        string                   `json:"id"`
	Turns     []*transcript.TurnRecord `json:"turns"`
	CreatedAt *epochtime.EpochTime     `json:"createdAt,omitempty"`
}

// Store tracks session records. All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	order   []string
	records map[string]*Record
	current string
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

// Start registers a new session and makes it current.
func (s *Store) Start(id string) error {
	if id == "" {
		return errors.New("session id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; ok {
		return fmt.Errorf("session %s already exists", id)
	}
	s.records[id] = &Record{ID: id, CreatedAt: epochtime.Now()}
	s.order = append(s.order, id)
	s.current = id
	return nil
}

// Append adds a turn to the given session. The turn becomes part of the
// record as-is and must not be mutated afterwards.
func (s *Store) Append(id string, turn *transcript.TurnRecord) error {
	if id == "" {
		return errors.New("session id is empty")
	}
	if turn == nil {
		return errors.New("turn is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	record, ok := s.records[id]
	if !ok {
		return fmt.Errorf("session %s not found", id)
	}
	record.Turns = append(record.Turns, turn)
	return nil
}

// Get returns a snapshot of the session with the given ID.
func (s *Store) Get(id string) (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return snapshot(record), true
}

// Current returns a snapshot of the most recently started session. An
// empty store yields a nil record and false, never an error.
func (s *Store) Current() (*Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == "" {
		return nil, false
	}
	record, ok := s.records[s.current]
	if !ok {
		return nil, false
	}
	return snapshot(record), true
}

// Cleanup removes a session. When the current session is removed the
// pointer falls back to the most recently started remaining session.
func (s *Store) Cleanup(id string) error {
	if id == "" {
		return errors.New("session id is empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[id]; !ok {
		return fmt.Errorf("session %s not found", id)
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	if s.current == id {
		s.current = ""
		if len(s.order) > 0 {
			s.current = s.order[len(s.order)-1]
		}
	}
	return nil
}

// CleanupAll removes every session.
func (s *Store) CleanupAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = make(map[string]*Record)
	s.order = nil
	s.current = ""
}

// Len returns the number of stored sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// IDs returns the session IDs in creation order.
func (s *Store) IDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.order...)
}

// snapshot copies the record header and turn list so later appends stay
// invisible to the caller. Turn records themselves are immutable.
func snapshot(record *Record) *Record {
	return &Record{
		ID:        record.ID,
		Turns:     append([]*transcript.TurnRecord(nil), record.Turns...),
		CreatedAt: record.CreatedAt,
	}
}
