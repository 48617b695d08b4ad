package testutil

import (
	"net/http"
	"sync"
)

// SessionFlag is an in-memory session store: HasSession returns whatever the
// test last set, and every read is counted.
type SessionFlag struct {
	mu      sync.Mutex
	present bool
	reads   int
}

// NewSessionFlag returns a SessionFlag reporting present.
func NewSessionFlag(present bool) *SessionFlag {
	return &SessionFlag{present: present}
}

// HasSession implements navigation.SessionStore.
func (s *SessionFlag) HasSession(*http.Request) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reads++
	return s.present
}

// Set changes what HasSession reports.
func (s *SessionFlag) Set(present bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.present = present
}

// Reads returns how many times HasSession was called.
func (s *SessionFlag) Reads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}
