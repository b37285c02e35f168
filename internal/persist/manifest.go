package persist

import (
	"encoding/json"
	"fmt"
)

// Manifest records the assets saved for one host node.
type Manifest struct {
	Original  string `json:"original"`
	Mask      string `json:"mask"`
	Composite string `json:"composite"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

// Names returns the manifest's asset names.
func (m *Manifest) Names() Names {
	return Names{Original: m.Original, Mask: m.Mask, Composite: m.Composite}
}

// Matches reports whether the manifest was written for the host image
// named source. Both names are compared in canonical form.
func (m *Manifest) Matches(source string) bool {
	current := CanonicalFilename(source)
	original := CanonicalFilename(m.Original)
	return current != "" && original != "" && current == original
}

// Encode returns the manifest as two-space indented JSON.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode manifest: %w", err)
	}
	return data, nil
}

// DecodeManifest parses a manifest. A manifest without an original name is
// rejected.
func DecodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: manifest: %v", ErrDecode, err)
	}
	if m.Original == "" {
		return nil, fmt.Errorf("%w: manifest has no original", ErrDecode)
	}
	return &m, nil
}
