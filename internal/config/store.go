package config

import (
	"fmt"
	"net/http"

	"rgbyp-maskeditor/internal/assets"
	"rgbyp-maskeditor/internal/assets/fsstore"
	"rgbyp-maskeditor/internal/assets/httpstore"
	"rgbyp-maskeditor/internal/assets/sqlitestore"
)

// OpenStore opens the configured asset store. The returned close function
// is never nil.
func (c StoreConfig) OpenStore() (assets.Store, func() error, error) {
	noop := func() error { return nil }
	switch c.Backend {
	case BackendMemory:
		return assets.NewMemStore(), noop, nil
	case BackendFS:
		s, err := fsstore.New(c.Root)
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	case BackendSQLite:
		s, err := sqlitestore.Open(c.DSN)
		if err != nil {
			return nil, noop, fmt.Errorf("failed to open sqlite store: %w", err)
		}
		return s, s.Close, nil
	case BackendHTTP:
		s, err := httpstore.New(c.URL, &http.Client{Timeout: c.Timeout})
		if err != nil {
			return nil, noop, err
		}
		return s, noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown store backend %q", c.Backend)
	}
}
