// Package mainwindow provides the mask editor window.
package mainwindow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"

	"rgbyp-maskeditor/internal/assets"
	"rgbyp-maskeditor/internal/config"
	"rgbyp-maskeditor/internal/editor"
	"rgbyp-maskeditor/internal/persist"
	"rgbyp-maskeditor/internal/raster"
	"rgbyp-maskeditor/internal/session"
	"rgbyp-maskeditor/internal/tool"
	"rgbyp-maskeditor/internal/version"
	"rgbyp-maskeditor/ui/canvas"
	"rgbyp-maskeditor/ui/prefs"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const appTitle = "RGBYP Mask Editor"

// MainWindow is the editor window.
type MainWindow struct {
	fyne.Window
	app   fyne.App
	ctrl  *editor.Controller
	store assets.Store
	prefs *prefs.Prefs
	cfg   config.EditorConfig

	nodeID    string
	canvas    *canvas.MaskCanvas
	statusBar *widget.Label
	controls  *controls

	showStatusItem *fyne.MenuItem
	syncQueued     atomic.Bool
	keys           *keyQueue
}

// New creates the editor window. store backs ctrl's persistence protocol
// and receives images opened from disk.
func New(fyneApp fyne.App, ctrl *editor.Controller, store assets.Store, p *prefs.Prefs, cfg config.EditorConfig) *MainWindow {
	win := fyneApp.NewWindow(appTitle)

	mw := &MainWindow{
		Window: win,
		app:    fyneApp,
		ctrl:   ctrl,
		store:  store,
		prefs:  p,
		cfg:    cfg,
		nodeID: cfg.NodeID,
	}
	if id := p.String(prefs.KeyNodeID); id != "" {
		mw.nodeID = id
	}

	mw.setupUI()
	mw.setupMenus()
	mw.setupEventHandlers()
	mw.setupKeys()

	w := p.FloatWithFallback(prefs.KeyWindowWidth, 1200)
	h := p.FloatWithFallback(prefs.KeyWindowHeight, 800)
	mw.Resize(fyne.NewSize(float32(w), float32(h)))
	mw.SetCloseIntercept(mw.onQuit)

	return mw
}

// setupUI creates the main UI layout.
func (mw *MainWindow) setupUI() {
	mw.canvas = canvas.NewMaskCanvas(mw.ctrl)
	mw.canvas.SetShowStatus(mw.prefs.Bool(prefs.KeyShowStatus, true))

	mw.statusBar = widget.NewLabel("Open an image to start editing")
	mw.controls = newControls(mw)

	content := container.NewBorder(
		mw.controls.toolbar(),             // top
		container.NewPadded(mw.statusBar), // bottom
		nil,                               // left
		nil,                               // right
		mw.canvas,                         // center
	)
	mw.SetContent(content)
}

// setupMenus creates the application menus.
func (mw *MainWindow) setupMenus() {
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Image...", mw.onOpenImage),
		fyne.NewMenuItem("Open Stored Image...", mw.onOpenStored),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Save", mw.onSave),
		fyne.NewMenuItem("Save and Close", mw.onSubmit),
		fyne.NewMenuItem("Close Editor", mw.onCloseEditor),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Node ID...", mw.onNodeID),
	)

	mw.showStatusItem = fyne.NewMenuItem("Show Status Label", mw.onToggleStatus)
	mw.showStatusItem.Checked = mw.prefs.Bool(prefs.KeyShowStatus, true)

	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Zoom In", func() { mw.do(func(m *tool.Machine) { m.ZoomAtCenter(1) }) }),
		fyne.NewMenuItem("Zoom Out", func() { mw.do(func(m *tool.Machine) { m.ZoomAtCenter(-1) }) }),
		fyne.NewMenuItem("Reset View", func() { mw.do(func(m *tool.Machine) { m.ResetView() }) }),
		fyne.NewMenuItemSeparator(),
		mw.showStatusItem,
	)

	helpMenu := fyne.NewMenu("Help",
		fyne.NewMenuItem("Keyboard Shortcuts", mw.onShortcuts),
		fyne.NewMenuItem("About", mw.onAbout),
	)

	mw.SetMainMenu(fyne.NewMainMenu(fileMenu, viewMenu, helpMenu))
}

// setupEventHandlers registers for session events.
func (mw *MainWindow) setupEventHandlers() {
	sessions := mw.ctrl.Sessions()

	// Listeners may run under the editor lock; anything that calls back
	// into the controller is deferred to a goroutine.
	sessions.On(session.EventMaskChanged, func(string, interface{}) {
		mw.canvas.MaskChanged()
		mw.queueSync()
	})
	sessions.On(session.EventViewChanged, func(string, interface{}) {
		mw.canvas.ViewChanged()
		mw.queueSync()
	})
	sessions.On(session.EventToolChanged, func(string, interface{}) {
		mw.canvas.ViewChanged()
		mw.queueSync()
	})
	sessions.On(session.EventOpened, func(nodeID string, data interface{}) {
		go func() {
			mw.canvas.Opened()
			mw.syncControls()
		}()
		if res, ok := data.(*persist.LoadResult); ok && res.Fallback != nil {
			mw.updateStatus(fmt.Sprintf("Node %s: saved edit does not match this image, started fresh", nodeID))
		}
	})
	sessions.On(session.EventSaved, func(nodeID string, data interface{}) {
		if res, ok := data.(*persist.SaveResult); ok {
			mw.updateStatus(fmt.Sprintf("Saved %s", res.Composite))
		}
	})
	sessions.On(session.EventClosed, func(nodeID string, _ interface{}) {
		mw.canvas.MaskChanged()
		mw.SetTitle(appTitle)
		mw.updateStatus(fmt.Sprintf("Closed editor for node %s", nodeID))
	})
}

// PreviewChanged implements editor.Host.
func (mw *MainWindow) PreviewChanged(nodeID string, composite assets.Ref) {
	log.Printf("Preview: node %s now shows %s", nodeID, composite)
}

// setupKeys routes window key events to the editor.
func (mw *MainWindow) setupKeys() {
	dc, ok := mw.Canvas().(desktop.Canvas)
	if !ok {
		return
	}
	// Presses may save and close, so they leave the UI goroutine; releases
	// share the queue so a quick tap is never seen out of order.
	mw.keys = newKeyQueue(mw.handleKey)
	dc.SetOnKeyDown(func(ev *fyne.KeyEvent) {
		mw.keys.push(keyEvent{key: toolKey(ev.Name, mw.modifiers())})
	})
	dc.SetOnKeyUp(func(ev *fyne.KeyEvent) {
		mw.keys.push(keyEvent{key: toolKey(ev.Name, mw.modifiers()), up: true})
	})
}

func (mw *MainWindow) handleKey(ev keyEvent) {
	if ev.up {
		mw.do(func(m *tool.Machine) { m.KeyUp(ev.key) })
		return
	}
	if _, err := mw.ctrl.HandleKey(context.Background(), ev.key); err != nil && !errors.Is(err, editor.ErrNoEditor) {
		mw.showError(err)
	}
}

func (mw *MainWindow) modifiers() fyne.KeyModifier {
	if d, ok := mw.app.Driver().(desktop.Driver); ok {
		return d.CurrentKeyModifiers()
	}
	return 0
}

// do runs fn on the active editor, ignoring the call when none is open.
func (mw *MainWindow) do(fn func(m *tool.Machine)) {
	if err := mw.ctrl.Do(fn); err != nil && !errors.Is(err, editor.ErrNoEditor) {
		log.Printf("Editor: %v", err)
	}
}

// queueSync schedules a control refresh; repeated requests coalesce.
func (mw *MainWindow) queueSync() {
	if mw.syncQueued.Swap(true) {
		return
	}
	go func() {
		mw.syncQueued.Store(false)
		mw.syncControls()
	}()
}

func (mw *MainWindow) syncControls() {
	var snap snapshot
	err := mw.ctrl.Do(func(m *tool.Machine) {
		snap = takeSnapshot(m.Session())
	})
	if err != nil {
		return
	}
	mw.controls.apply(snap)
	mw.updateStatus(snap.status)
}

// updateStatus updates the status bar text.
func (mw *MainWindow) updateStatus(text string) {
	mw.statusBar.SetText(text)
}

func (mw *MainWindow) showError(err error) {
	log.Printf("Error: %v", err)
	dialog.ShowError(err, mw.Window)
}

// RestoreLastImage reopens the image edited in the previous run.
func (mw *MainWindow) RestoreLastImage() {
	path := mw.prefs.String(prefs.KeyLastImage)
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		log.Printf("Prefs: last image %s unavailable: %v", path, err)
		return
	}
	mw.OpenFile(path)
}

// OpenFile uploads a local image to the input area and opens it.
func (mw *MainWindow) OpenFile(path string) {
	if !raster.IsSupportedFormat(path) {
		mw.showError(fmt.Errorf("unsupported image format: %s", filepath.Ext(path)))
		return
	}
	data, err := os.ReadFile(path)
	if err != nil {
		mw.showError(fmt.Errorf("failed to read %s: %w", path, err))
		return
	}

	go func() {
		ctx := context.Background()
		ref, err := mw.store.Upload(ctx, assets.Input("", filepath.Base(path)), data, true)
		if err != nil {
			mw.showError(fmt.Errorf("failed to upload %s: %w", path, err))
			return
		}
		mw.prefs.SetString(prefs.KeyLastImage, path)
		mw.prefs.SetString(prefs.KeyLastDir, filepath.Dir(path))
		mw.openRef(ctx, ref)
	}()
}

func (mw *MainWindow) openRef(ctx context.Context, ref assets.Ref) {
	mw.updateStatus("Opening " + ref.String() + "...")
	node := persist.Node{ID: mw.nodeID, Source: ref}
	mw.applyEditorDefaults()
	sess, err := mw.ctrl.Open(ctx, node)
	if err != nil {
		if !errors.Is(err, editor.ErrClosed) {
			mw.showError(err)
		}
		return
	}
	mw.SetTitle(fmt.Sprintf("%s - %s (node %s)", appTitle, ref.Filename, sess.NodeID))
}

// applyEditorDefaults seeds a node's first session from the configuration.
func (mw *MainWindow) applyEditorDefaults() {
	size := mw.cfg.BrushSize
	opacity := mw.cfg.MaskOpacity
	mw.ctrl.Seed(mw.nodeID, session.Patch{BrushSize: &size, MaskOpacity: &opacity})
}

// Menu action handlers

func (mw *MainWindow) onOpenImage() {
	fd := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil || reader == nil {
			return
		}
		reader.Close()
		mw.OpenFile(reader.URI().Path())
	}, mw.Window)
	fd.SetFilter(storage.NewExtensionFileFilter(raster.SupportedFormats()))
	if loc := mw.lastDir(); loc != nil {
		fd.SetLocation(loc)
	}
	fd.Show()
}

func (mw *MainWindow) onOpenStored() {
	area := widget.NewSelect([]string{string(assets.AreaInput), string(assets.AreaTemp)}, nil)
	area.SetSelected(string(assets.AreaInput))
	subfolder := widget.NewEntry()
	name := widget.NewEntry()
	name.SetPlaceHolder("photo.png")

	dialog.ShowForm("Open Stored Image", "Open", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Area", area),
		widget.NewFormItem("Subfolder", subfolder),
		widget.NewFormItem("Filename", name),
	}, func(ok bool) {
		if !ok {
			return
		}
		ref := assets.Ref{Filename: name.Text, Subfolder: subfolder.Text, Area: assets.Area(area.Selected)}
		if err := ref.Validate(); err != nil {
			mw.showError(err)
			return
		}
		go mw.openRef(context.Background(), ref)
	}, mw.Window)
}

func (mw *MainWindow) onSave() {
	go func() {
		if _, err := mw.ctrl.Save(context.Background()); err != nil && !errors.Is(err, editor.ErrClosed) {
			mw.showError(err)
		}
	}()
}

func (mw *MainWindow) onSubmit() {
	go func() {
		if _, err := mw.ctrl.Submit(context.Background()); err != nil && !errors.Is(err, editor.ErrClosed) {
			mw.showError(err)
		}
	}()
}

func (mw *MainWindow) onCloseEditor() {
	mw.ctrl.Close()
}

func (mw *MainWindow) onNodeID() {
	entry := widget.NewEntry()
	entry.SetText(mw.nodeID)
	dialog.ShowForm("Node ID", "Set", "Cancel", []*widget.FormItem{
		widget.NewFormItem("Node", entry),
	}, func(ok bool) {
		if !ok || entry.Text == "" {
			return
		}
		mw.nodeID = entry.Text
		mw.prefs.SetString(prefs.KeyNodeID, mw.nodeID)
		mw.updateStatus("Node ID set to " + mw.nodeID)
	}, mw.Window)
}

func (mw *MainWindow) onToggleStatus() {
	show := !mw.showStatusItem.Checked
	mw.showStatusItem.Checked = show
	mw.prefs.SetBool(prefs.KeyShowStatus, show)
	mw.canvas.SetShowStatus(show)
	mw.MainMenu().Refresh()
}

func (mw *MainWindow) onShortcuts() {
	dialog.ShowInformation("Keyboard Shortcuts", shortcutHelp, mw.Window)
}

func (mw *MainWindow) onAbout() {
	dialog.ShowInformation("About "+appTitle,
		fmt.Sprintf("%s\n\nPaint red, green, blue, yellow and pink region masks over an image.",
			version.String(appTitle)),
		mw.Window)
}

func (mw *MainWindow) onQuit() {
	size := mw.Canvas().Size()
	mw.prefs.SetFloat(prefs.KeyWindowWidth, float64(size.Width))
	mw.prefs.SetFloat(prefs.KeyWindowHeight, float64(size.Height))
	if err := mw.prefs.Save(); err != nil {
		log.Printf("Prefs: %v", err)
	}
	mw.ctrl.Close()
	mw.Close()
}

// lastDir returns the last used directory as a ListableURI, or nil.
func (mw *MainWindow) lastDir() fyne.ListableURI {
	path := mw.prefs.String(prefs.KeyLastDir)
	if path == "" {
		return nil
	}
	listable, err := storage.ListerForURI(storage.NewFileURI(path))
	if err != nil {
		return nil
	}
	return listable
}
