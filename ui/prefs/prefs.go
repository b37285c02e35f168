// Package prefs provides JSON-based application preferences.
package prefs

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
)

const prefsFile = "preferences.json"

// Prefs is the desktop editor's key-value settings file. Keys are listed
// below; values keep their JSON types.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]any
	path   string
}

// Preference keys used by the editor window.
const (
	KeyLastDir      = "lastDirectory"
	KeyLastImage    = "lastImage"
	KeyNodeID       = "nodeID"
	KeyWindowWidth  = "windowWidth"
	KeyWindowHeight = "windowHeight"
	KeyShowStatus   = "showStatus"
)

// Load reads preferences from ~/.config/rgbyp-maskeditor/preferences.json.
// Returns a Prefs with defaults if the file doesn't exist.
func Load() *Prefs {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return LoadFrom(filepath.Join(configDir, "rgbyp-maskeditor", prefsFile))
}

// LoadFrom reads preferences from path. A missing or unreadable file
// yields empty preferences that are saved to path.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]any),
		path:   path,
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		return p
	}
	if err := json.Unmarshal(data, &p.values); err != nil {
		log.Printf("Prefs: ignoring %s: %v", p.path, err)
		p.values = make(map[string]any)
	}
	return p
}

// Path returns the file preferences are saved to.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode prefs: %w", err)
	}

	dir := filepath.Dir(p.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create prefs dir: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write prefs: %w", err)
	}
	return nil
}

// lookup returns the value stored under key if it has type T.
func lookup[T any](p *Prefs, key string) (T, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	v, ok := p.values[key].(T)
	return v, ok
}

func (p *Prefs) set(key string, val any) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}

// Float returns a numeric preference, or 0.
func (p *Prefs) Float(key string) float64 {
	return p.FloatWithFallback(key, 0)
}

// FloatWithFallback returns a numeric preference. Window sizes are stored
// this way; JSON decodes every number as float64.
func (p *Prefs) FloatWithFallback(key string, fallback float64) float64 {
	if f, ok := lookup[float64](p, key); ok {
		return f
	}
	if n, ok := lookup[int](p, key); ok {
		return float64(n)
	}
	return fallback
}

func (p *Prefs) SetFloat(key string, val float64) { p.set(key, val) }

// String returns a string preference such as the last opened image, or "".
func (p *Prefs) String(key string) string {
	s, _ := lookup[string](p, key)
	return s
}

func (p *Prefs) SetString(key, val string) { p.set(key, val) }

// Bool returns a bool preference, or fallback when unset or mistyped.
func (p *Prefs) Bool(key string, fallback bool) bool {
	if b, ok := lookup[bool](p, key); ok {
		return b
	}
	return fallback
}

func (p *Prefs) SetBool(key string, val bool) { p.set(key, val) }
