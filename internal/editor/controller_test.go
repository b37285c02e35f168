package editor

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync"
	"testing"

	"rgbyp-maskeditor/internal/assets"
	"rgbyp-maskeditor/internal/persist"
	"rgbyp-maskeditor/internal/session"
	"rgbyp-maskeditor/internal/tool"
	"rgbyp-maskeditor/pkg/geometry"
)

type previewRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *previewRecorder) PreviewChanged(nodeID string, composite assets.Ref) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, nodeID+"="+composite.Key())
}

func (r *previewRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.calls...)
}

func seed(t *testing.T, store assets.Store, name string, w, h int) persist.Node {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	ref := assets.Input("", name)
	if _, err := store.Upload(context.Background(), ref, buf.Bytes(), true); err != nil {
		t.Fatal(err)
	}
	return persist.Node{Source: ref}
}

func newController(t *testing.T, store assets.Store) (*Controller, *previewRecorder) {
	t.Helper()
	host := &previewRecorder{}
	return New(session.NewStore(), persist.New(store), host), host
}

func TestOpenPaintSubmit(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemStore()
	node := seed(t, store, "photo.png", 40, 20)
	node.ID = "7"
	c, host := newController(t, store)

	var closed []string
	c.Sessions().On(session.EventClosed, func(id string, _ interface{}) { closed = append(closed, id) })

	c.SetContainer(geometry.NewRect(0, 0, 80, 80), false)
	sess, err := c.Open(ctx, node)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if sess.Model.Width() != 40 || sess.Model.Height() != 20 {
		t.Fatalf("model = %dx%d", sess.Model.Width(), sess.Model.Height())
	}
	if active, ok := c.Sessions().Active(); !ok || active != sess {
		t.Fatal("session not active")
	}

	c.SetContainer(geometry.NewRect(0, 0, 80, 80), true)
	if sess.View.Zoom != 2 {
		t.Errorf("fit zoom = %v, want 2", sess.View.Zoom)
	}

	err = c.Do(func(m *tool.Machine) {
		m.SetColor(2)
		m.PointerDown(geometry.NewPoint2D(20, 20), tool.ButtonPrimary)
		m.PointerUp(geometry.NewPoint2D(20, 20), tool.ButtonPrimary)
	})
	if err != nil {
		t.Fatal(err)
	}
	if a := sess.Model.MaskAlphaAt(10, 10); a != 255 {
		t.Errorf("painted alpha = %d", a)
	}

	res, err := c.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.Saved() || res.Names.Composite != "photo_rgbyp_composite.png" {
		t.Errorf("result = %+v", res)
	}
	if got := host.snapshot(); len(got) != 1 || got[0] != "7=temp/photo_rgbyp_composite.png" {
		t.Errorf("preview calls = %v", got)
	}
	if _, ok := c.Active(); ok {
		t.Error("editor still open after submit")
	}
	if len(closed) != 1 || closed[0] != "7" {
		t.Errorf("closed events = %v", closed)
	}
	if !store.Has(assets.Input(persist.CompositeSubfolder, "photo_rgbyp_composite.png")) {
		t.Error("composite missing from input area")
	}
}

func TestOpenSecondEditorReplacesFirst(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemStore()
	a := seed(t, store, "a.png", 4, 4)
	a.ID = "1"
	b := seed(t, store, "b.png", 4, 4)
	b.ID = "2"
	c, _ := newController(t, store)

	var closed []string
	c.Sessions().On(session.EventClosed, func(id string, _ interface{}) { closed = append(closed, id) })

	first, err := c.Open(ctx, a)
	if err != nil {
		t.Fatal(err)
	}
	tok := first.Begin()
	if _, err := c.Open(ctx, b); err != nil {
		t.Fatal(err)
	}
	if first.Current(tok) {
		t.Error("first editor's token survived replacement")
	}
	active, _ := c.Active()
	if active.NodeID != "2" {
		t.Errorf("active = %s", active.NodeID)
	}
	if len(closed) != 1 || closed[0] != "1" {
		t.Errorf("closed events = %v", closed)
	}
}

// gatedStore blocks uploads until release is closed.
type gatedStore struct {
	*assets.MemStore
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (s *gatedStore) Upload(ctx context.Context, ref assets.Ref, data []byte, overwrite bool) (assets.Ref, error) {
	s.once.Do(func() { close(s.started) })
	<-s.release
	return s.MemStore.Upload(ctx, ref, data, overwrite)
}

func TestCloseDuringSaveSkipsPreview(t *testing.T) {
	ctx := context.Background()
	mem := assets.NewMemStore()
	node := seed(t, mem, "photo.png", 4, 4)
	node.ID = "5"
	store := &gatedStore{MemStore: mem, started: make(chan struct{}), release: make(chan struct{})}
	c, host := newController(t, store)

	if _, err := c.Open(ctx, node); err != nil {
		t.Fatal(err)
	}

	errCh := make(chan error, 1)
	go func() {
		_, err := c.Save(ctx)
		errCh <- err
	}()
	<-store.started
	c.Close()
	close(store.release)

	if err := <-errCh; !errors.Is(err, ErrClosed) {
		t.Errorf("Save err = %v, want ErrClosed", err)
	}
	if got := host.snapshot(); len(got) != 0 {
		t.Errorf("preview updated after close: %v", got)
	}
}

func TestHandleKeyActions(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemStore()
	node := seed(t, store, "photo.png", 4, 4)
	node.ID = "8"
	c, host := newController(t, store)

	if _, err := c.Open(ctx, node); err != nil {
		t.Fatal(err)
	}
	if ok, err := c.HandleKey(ctx, tool.Key{Code: "Escape"}); !ok || err != nil {
		t.Fatalf("Escape = %v, %v", ok, err)
	}
	if _, ok := c.Active(); ok {
		t.Fatal("Escape did not close")
	}
	if len(host.snapshot()) != 0 {
		t.Error("Escape saved")
	}

	if _, err := c.Open(ctx, node); err != nil {
		t.Fatal(err)
	}
	if _, err := c.HandleKey(ctx, tool.Key{Code: "Enter"}); err != nil {
		t.Fatalf("Enter: %v", err)
	}
	if _, ok := c.Active(); ok {
		t.Error("Enter did not close")
	}
	if len(host.snapshot()) != 1 {
		t.Errorf("preview calls = %v", host.snapshot())
	}
}

func TestNoEditor(t *testing.T) {
	c, _ := newController(t, assets.NewMemStore())
	if _, err := c.Save(context.Background()); !errors.Is(err, ErrNoEditor) {
		t.Errorf("Save err = %v", err)
	}
	if err := c.Do(func(*tool.Machine) {}); !errors.Is(err, ErrNoEditor) {
		t.Errorf("Do err = %v", err)
	}
}

func TestReopenRestoresMask(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemStore()
	node := seed(t, store, "photo.png", 10, 10)
	node.ID = "4"
	c, _ := newController(t, store)

	sess, err := c.Open(ctx, node)
	if err != nil {
		t.Fatal(err)
	}
	c.Do(func(m *tool.Machine) { m.ApplyAutoMask(0) })
	if _, err := c.Submit(ctx); err != nil {
		t.Fatal(err)
	}

	sess, err = c.Open(ctx, node)
	if err != nil {
		t.Fatal(err)
	}
	if got := sess.Model.Mask().RGBAAt(0, 0); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("left pixel = %v, want red", got)
	}
	if got := sess.Model.Mask().RGBAAt(9, 0); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("right pixel = %v, want green", got)
	}
}

func TestSeedOnlyNewSessions(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemStore()
	node := seed(t, store, "photo.png", 10, 10)
	node.ID = "9"
	c, _ := newController(t, store)

	size, opacity := 12, 0.5
	if !c.Seed(node.ID, session.Patch{BrushSize: &size, MaskOpacity: &opacity}) {
		t.Fatal("Seed on a new node reported false")
	}
	sess, err := c.Open(ctx, node)
	if err != nil {
		t.Fatal(err)
	}
	if sess.BrushSize != 12 || sess.MaskOpacity() != 0.5 {
		t.Errorf("brush %d opacity %v, want seeded values", sess.BrushSize, sess.MaskOpacity())
	}

	other := 99
	if c.Seed(node.ID, session.Patch{BrushSize: &other}) {
		t.Error("Seed on an existing node reported true")
	}
	if sess.BrushSize != 12 {
		t.Errorf("brush = %d after second seed", sess.BrushSize)
	}
}

func TestNilHostSubmits(t *testing.T) {
	ctx := context.Background()
	store := assets.NewMemStore()
	node := seed(t, store, "photo.png", 8, 8)
	node.ID = "3"
	c := New(session.NewStore(), persist.New(store), nil)

	if _, err := c.Open(ctx, node); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Submit(ctx); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if _, ok := c.Active(); ok {
		t.Error("editor still active after submit")
	}
}

func TestHostFunc(t *testing.T) {
	var gotNode string
	var gotRef assets.Ref
	h := HostFunc(func(nodeID string, composite assets.Ref) {
		gotNode, gotRef = nodeID, composite
	})
	h.PreviewChanged("5", assets.Input("rgbyp", "a_rgbyp_composite.png"))
	if gotNode != "5" || gotRef.Filename != "a_rgbyp_composite.png" {
		t.Errorf("got %q %v", gotNode, gotRef)
	}
}
