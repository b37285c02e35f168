// Package session holds the per-node editor sessions and the active-editor
// pointer.
package session

import (
	"sync/atomic"

	"rgbyp-maskeditor/internal/automask"
	"rgbyp-maskeditor/internal/raster"
	"rgbyp-maskeditor/internal/viewport"
	"rgbyp-maskeditor/pkg/geometry"
)

// Tool identifies the persistent editing tool.
type Tool int

const (
	ToolBrush Tool = iota
	ToolErase
	ToolPan
)

func (t Tool) String() string {
	switch t {
	case ToolBrush:
		return "Brush"
	case ToolErase:
		return "Erase"
	case ToolPan:
		return "Pan"
	default:
		return "Unknown"
	}
}

// Session defaults.
const (
	DefaultBrushSize   = 40
	DefaultMaskOpacity = 0.75

	MinBrushSize = 1
	MaxBrushSize = 400
)

// Session is the editor state of one host node. It is mutated by one
// goroutine at a time; the editor controller serializes access.
type Session struct {
	NodeID string

	Model *raster.Model
	View  viewport.Viewport

	Tool       Tool
	BrushSize  int
	ColorIndex int
	AutoMask   int

	Drawing   bool
	Panning   bool
	SpaceHeld bool

	// Cursor is the last pointer position in screen space.
	Cursor    geometry.Point2D
	HasCursor bool

	// Source is the host image the session was opened for.
	Source string

	generation atomic.Uint64
}

func newSession(nodeID string) *Session {
	model := raster.NewModel(0, 0)
	model.SetOpacity(DefaultMaskOpacity)
	return &Session{
		NodeID:     nodeID,
		Model:      model,
		View:       viewport.New(geometry.Rect{}, 0, 0),
		Tool:       ToolBrush,
		BrushSize:  DefaultBrushSize,
		ColorIndex: 0,
		AutoMask:   automask.None,
	}
}

// MaskOpacity returns the mask opacity of the session's model.
func (s *Session) MaskOpacity() float64 {
	return s.Model.Opacity()
}

// ClampBrushSize bounds a brush size to [MinBrushSize, MaxBrushSize].
func ClampBrushSize(size int) int {
	if size < MinBrushSize {
		return MinBrushSize
	}
	if size > MaxBrushSize {
		return MaxBrushSize
	}
	return size
}

// Token identifies one open period of a session. Background work started
// while the editor is open carries a token and is dropped once the token is
// stale.
type Token struct {
	NodeID     string
	Generation uint64
}

// Begin returns a token for the current generation.
func (s *Session) Begin() Token {
	return Token{NodeID: s.NodeID, Generation: s.generation.Load()}
}

// Close invalidates every token issued so far.
func (s *Session) Close() {
	s.generation.Add(1)
}

// Current reports whether tok was issued for the session's current
// generation.
func (s *Session) Current(tok Token) bool {
	return tok.NodeID == s.NodeID && tok.Generation == s.generation.Load()
}
