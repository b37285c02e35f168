// Package main provides the entry point for the RGBYP mask editor.
package main

import (
	"flag"
	"fmt"
	"log"

	"rgbyp-maskeditor/internal/app"
	"rgbyp-maskeditor/internal/assets"
	"rgbyp-maskeditor/internal/config"
	"rgbyp-maskeditor/internal/editor"
	"rgbyp-maskeditor/internal/persist"
	"rgbyp-maskeditor/internal/session"
	"rgbyp-maskeditor/internal/version"
	"rgbyp-maskeditor/ui/mainwindow"
	"rgbyp-maskeditor/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const (
	appTitle = "RGBYP Mask Editor"
	appID    = "io.rgbyp.maskeditor"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	nodeID := flag.String("node", "", "node id to edit (overrides config)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String(appTitle))
		return
	}

	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, version.Version)

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Config: %v", err)
	}
	if *nodeID != "" {
		cfg.Editor.NodeID = *nodeID
	}

	store, closeStore, err := cfg.Store.OpenStore()
	if err != nil {
		log.Fatalf("Store: %v", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			log.Printf("Store: close: %v", err)
		}
	}()
	log.Printf("Store: using %s backend", cfg.Store.Backend)

	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(app.NewMaskEditorTheme())

	appPrefs := prefs.Load()
	if *nodeID != "" {
		appPrefs.SetString(prefs.KeyNodeID, *nodeID)
	}

	// The window is the editor's host; it is attached once created.
	host := &hostRelay{}
	ctrl := editor.New(session.NewStore(), persist.New(store), host)

	win := mainwindow.New(fyneApp, ctrl, store, appPrefs, cfg.Editor)
	host.target = win

	if args := flag.Args(); len(args) > 0 {
		win.OpenFile(args[0])
	} else {
		win.RestoreLastImage()
	}

	win.ShowAndRun()
}

// hostRelay forwards preview notifications to the window once it exists.
type hostRelay struct {
	target editor.Host
}

func (h *hostRelay) PreviewChanged(nodeID string, composite assets.Ref) {
	if h.target != nil {
		h.target.PreviewChanged(nodeID, composite)
	}
}
