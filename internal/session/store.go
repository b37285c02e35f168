package session

import (
	"sync"

	"rgbyp-maskeditor/internal/viewport"
	"rgbyp-maskeditor/pkg/colorutil"
)

// EventType identifies session events.
type EventType int

const (
	EventMaskChanged EventType = iota
	EventViewChanged
	EventToolChanged
	EventOpened
	EventSaved
	EventClosed
)

// EventListener is called when an event occurs.
type EventListener func(nodeID string, data interface{})

// Patch carries optional field updates for Update. Nil fields are left
// unchanged.
type Patch struct {
	Tool        *Tool
	BrushSize   *int
	ColorIndex  *int
	MaskOpacity *float64
	AutoMask    *int
	Zoom        *float64
	Source      *string
}

// Store owns every session created in the process and the id of the
// single active editor.
type Store struct {
	mu sync.RWMutex

	sessions  map[string]*Session
	active    string
	hasActive bool

	listeners map[EventType][]EventListener
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions:  make(map[string]*Session),
		listeners: make(map[EventType][]EventListener),
	}
}

// Get returns the session for nodeID, creating it with defaults on first
// use.
func (s *Store) Get(nodeID string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[nodeID]
	if !ok {
		sess = newSession(nodeID)
		s.sessions[nodeID] = sess
	}
	return sess
}

// Lookup returns the session for nodeID without creating it.
func (s *Store) Lookup(nodeID string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[nodeID]
	return sess, ok
}

// Update merges the non-nil fields of p into the session for nodeID and
// returns it. Values are clamped into their valid ranges. The store lock
// only guards the session map; callers serialize field writes with the
// editor that owns the session.
func (s *Store) Update(nodeID string, p Patch) *Session {
	sess := s.Get(nodeID)
	if p.Tool != nil {
		sess.Tool = *p.Tool
	}
	if p.BrushSize != nil {
		sess.BrushSize = ClampBrushSize(*p.BrushSize)
	}
	if p.ColorIndex != nil {
		sess.ColorIndex = colorutil.ClampIndex(*p.ColorIndex)
	}
	if p.MaskOpacity != nil {
		sess.Model.SetOpacity(*p.MaskOpacity)
	}
	if p.AutoMask != nil {
		sess.AutoMask = *p.AutoMask
	}
	if p.Zoom != nil {
		sess.View.Zoom = viewport.ClampZoom(*p.Zoom)
	}
	if p.Source != nil {
		sess.Source = *p.Source
	}
	return sess
}

// Activate makes nodeID the active editor, replacing any previous one.
func (s *Store) Activate(nodeID string) *Session {
	sess := s.Get(nodeID)
	s.mu.Lock()
	s.active = nodeID
	s.hasActive = true
	s.mu.Unlock()
	return sess
}

// Active returns the active session, if any.
func (s *Store) Active() (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.hasActive {
		return nil, false
	}
	return s.sessions[s.active], true
}

// Deactivate clears the active pointer if nodeID is still the active
// editor. It reports whether it did.
func (s *Store) Deactivate(nodeID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.hasActive || s.active != nodeID {
		return false
	}
	s.active = ""
	s.hasActive = false
	return true
}

// On registers an event listener for the specified event type.
func (s *Store) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *Store) Emit(event EventType, nodeID string, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(nodeID, data)
	}
}
