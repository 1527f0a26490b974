// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// Session owns the index of the document currently open in a viewer. Each
// Load bumps a generation counter; a build publishes its index only if no
// newer Load started meanwhile, so readers never observe a stale or partial
// index.
type Session struct {
	builder *Builder

	mu      sync.Mutex // serializes generation bumps with publication
	gen     atomic.Uint64
	docID   string
	current atomic.Pointer[DocumentIndex]
}

// NewSession returns a session that builds indexes with b.
func NewSession(b *Builder) *Session {
	return &Session{builder: b}
}

// Current returns the published index, or nil while none is available.
func (s *Session) Current() *DocumentIndex {
	return s.current.Load()
}

// Generation returns the number of loads started so far.
func (s *Session) Generation() uint64 {
	return s.gen.Load()
}

// Load starts a new generation for docID, withdraws the previous index and
// builds a fresh one. If another Load starts before the build finishes, the
// result is discarded and ErrStaleIndex returned.
func (s *Session) Load(ctx context.Context, docID string) (*DocumentIndex, error) {
	s.mu.Lock()
	gen := s.gen.Add(1)
	s.docID = docID
	s.current.Store(nil)
	s.mu.Unlock()

	isCurrent := func() bool { return s.gen.Load() == gen }

	idx, err := s.builder.build(ctx, docID, gen, isCurrent)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !isCurrent() {
		s.builder.logger().Debug("dropping stale index", "doc", docID, "load", idx.LoadID)
		return nil, ErrStaleIndex
	}
	s.current.Store(idx)
	return idx, nil
}

// Refresh rebuilds the current document, re-running reference detection.
// It is the only way detection runs again within a session.
func (s *Session) Refresh(ctx context.Context) (*DocumentIndex, error) {
	s.mu.Lock()
	docID := s.docID
	s.mu.Unlock()
	if docID == "" {
		return nil, errors.New("no document loaded")
	}
	return s.Load(ctx, docID)
}

// Invalidate withdraws the current index and cancels any in-flight build,
// for example when the viewer navigates away from the document.
func (s *Session) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen.Add(1)
	s.docID = ""
	s.current.Store(nil)
}
