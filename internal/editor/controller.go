// Package editor coordinates one open mask editor: it activates the node's
// session, loads and saves through the persistence protocol and routes
// input to the tool machine.
package editor

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"rgbyp-maskeditor/internal/assets"
	"rgbyp-maskeditor/internal/automask"
	"rgbyp-maskeditor/internal/persist"
	"rgbyp-maskeditor/internal/session"
	"rgbyp-maskeditor/internal/tool"
	"rgbyp-maskeditor/pkg/geometry"
)

// ErrNoEditor is returned when an operation needs an open editor.
var ErrNoEditor = errors.New("no editor open")

// ErrClosed is returned when the editor was closed while a load or save
// was running; the result was discarded.
var ErrClosed = errors.New("editor closed")

// Host is notified when a node's preview should show a new composite.
type Host interface {
	PreviewChanged(nodeID string, composite assets.Ref)
}

// HostFunc adapts a function to Host.
type HostFunc func(nodeID string, composite assets.Ref)

// PreviewChanged calls f.
func (f HostFunc) PreviewChanged(nodeID string, composite assets.Ref) {
	f(nodeID, composite)
}

// Controller owns the single active editor.
type Controller struct {
	sessions *session.Store
	proto    *persist.Protocol
	host     Host

	mu      sync.Mutex
	node    persist.Node
	machine *tool.Machine
	token   session.Token
}

// New creates a controller. host may be nil.
func New(sessions *session.Store, proto *persist.Protocol, host Host) *Controller {
	if host == nil {
		host = HostFunc(func(string, assets.Ref) {})
	}
	return &Controller{sessions: sessions, proto: proto, host: host}
}

// Sessions returns the session store.
func (c *Controller) Sessions() *session.Store {
	return c.sessions
}

// Seed applies p to the session for nodeID if it has not been created yet
// and reports whether it did. Existing sessions keep their own settings.
func (c *Controller) Seed(nodeID string, p session.Patch) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.sessions.Lookup(nodeID); ok {
		return false
	}
	c.sessions.Update(nodeID, p)
	return true
}

// Open makes node the active editor and loads its buffers. A previously
// open editor is closed first. Open blocks until loading finishes; if the
// editor is closed meanwhile the loaded buffers are discarded and ErrClosed
// returned.
func (c *Controller) Open(ctx context.Context, node persist.Node) (*session.Session, error) {
	c.mu.Lock()
	prev := c.closeLocked()
	sess := c.sessions.Activate(node.ID)
	src := node.Source.Key()
	c.sessions.Update(node.ID, session.Patch{Source: &src})
	c.node = node
	c.token = sess.Begin()
	c.machine = tool.New(sess, func(event session.EventType, data interface{}) {
		c.sessions.Emit(event, node.ID, data)
	})
	tok := c.token
	c.mu.Unlock()
	c.emitClosed(prev)

	log.Printf("Editor: opening node %s (%s)", node.ID, node.Source)
	res, err := c.proto.Open(ctx, node)
	if err != nil {
		return nil, fmt.Errorf("failed to open node %s: %w", node.ID, err)
	}

	c.mu.Lock()
	if !sess.Current(tok) {
		c.mu.Unlock()
		log.Printf("Editor: node %s closed during load, discarding", node.ID)
		return nil, ErrClosed
	}
	sess.Model.DrawBase(res.Base)
	if res.Mask != nil {
		sess.Model.DrawMask(res.Mask)
	} else {
		sess.Model.ClearMask()
	}
	sess.View.SetImageSize(sess.Model.Width(), sess.Model.Height())
	sess.View.Fit()
	sess.AutoMask = automask.None
	c.mu.Unlock()

	log.Printf("Editor: node %s loaded %dx%d", node.ID, sess.Model.Width(), sess.Model.Height())
	c.sessions.Emit(session.EventOpened, node.ID, res)
	c.sessions.Emit(session.EventMaskChanged, node.ID, nil)
	c.sessions.Emit(session.EventViewChanged, node.ID, nil)
	return sess, nil
}

// Do runs fn with the active tool machine while holding the editor lock.
// Input events are routed through Do so they never interleave with a load.
// Events emitted by the machine are delivered under the lock; listeners
// must not call back into the controller.
func (c *Controller) Do(fn func(m *tool.Machine)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine == nil {
		return ErrNoEditor
	}
	fn(c.machine)
	return nil
}

// SetContainer updates the visible canvas rectangle of the active editor.
// With fit set the image is refitted into it.
func (c *Controller) SetContainer(r geometry.Rect, fit bool) {
	c.Do(func(m *tool.Machine) {
		view := &m.Session().View
		view.SetContainer(r)
		if fit {
			view.Fit()
		}
	})
}

// Save writes the active editor's buffers. The host preview is updated
// only when the composite was stored and the editor is still open.
func (c *Controller) Save(ctx context.Context) (*persist.SaveResult, error) {
	c.mu.Lock()
	if c.machine == nil {
		c.mu.Unlock()
		return nil, ErrNoEditor
	}
	sess := c.machine.Session()
	node := c.node
	tok := c.token
	model := sess.Model.Clone()
	c.mu.Unlock()

	res := c.proto.Save(ctx, node, model)

	if !sess.Current(tok) {
		log.Printf("Editor: node %s closed during save, skipping preview update", node.ID)
		return res, ErrClosed
	}
	if res.Saved() {
		c.host.PreviewChanged(node.ID, res.Composite)
		c.sessions.Emit(session.EventSaved, node.ID, res)
	}
	return res, res.Err
}

// Submit saves and then closes the editor, as the Enter key does.
func (c *Controller) Submit(ctx context.Context) (*persist.SaveResult, error) {
	res, err := c.Save(ctx)
	if errors.Is(err, ErrNoEditor) || errors.Is(err, ErrClosed) {
		return res, err
	}
	c.Close()
	return res, err
}

// Close closes the active editor. Loads and saves still running for it are
// discarded when they complete.
func (c *Controller) Close() {
	c.mu.Lock()
	id := c.closeLocked()
	c.mu.Unlock()
	c.emitClosed(id)
}

// closeLocked closes the active editor and returns its node id, or "" when
// none was open.
func (c *Controller) closeLocked() string {
	if c.machine == nil {
		return ""
	}
	sess := c.machine.Session()
	sess.Close()
	sess.Drawing = false
	sess.Panning = false
	sess.SpaceHeld = false
	c.sessions.Deactivate(sess.NodeID)
	c.machine = nil
	log.Printf("Editor: closed node %s", sess.NodeID)
	return sess.NodeID
}

func (c *Controller) emitClosed(nodeID string) {
	if nodeID != "" {
		c.sessions.Emit(session.EventClosed, nodeID, nil)
	}
}

// HandleKey routes a key press to the active editor and carries out the
// resulting action. Submit runs on the calling goroutine.
func (c *Controller) HandleKey(ctx context.Context, k tool.Key) (bool, error) {
	var action tool.Action
	var consumed bool
	if err := c.Do(func(m *tool.Machine) {
		action, consumed = m.KeyDown(k)
	}); err != nil {
		return false, err
	}

	switch action {
	case tool.ActionClose:
		c.Close()
	case tool.ActionSaveAndClose:
		if _, err := c.Submit(ctx); err != nil {
			return consumed, err
		}
	}
	return consumed, nil
}

// Active returns the active session.
func (c *Controller) Active() (*session.Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.machine == nil {
		return nil, false
	}
	return c.machine.Session(), true
}
