package httpstore

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"rgbyp-maskeditor/internal/assets"
	"rgbyp-maskeditor/internal/assetserver"
)

func newClient(t *testing.T) (*Client, *assets.MemStore) {
	t.Helper()
	store := assets.NewMemStore()
	srv := httptest.NewServer(assetserver.New(store, nil).Handler())
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, srv.Client())
	if err != nil {
		t.Fatal(err)
	}
	return c, store
}

func TestRoundTrip(t *testing.T) {
	c, store := newClient(t)
	ctx := context.Background()

	ref := assets.Input("rgbyp", "photo_rgbyp_composite.png")
	got, err := c.Upload(ctx, ref, []byte("composite"), true)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if got != ref {
		t.Errorf("ref = %+v, want %+v", got, ref)
	}
	if !store.Has(ref) {
		t.Fatal("server store missing blob")
	}

	data, err := c.Fetch(ctx, ref)
	if err != nil || string(data) != "composite" {
		t.Errorf("Fetch = %q, %v", data, err)
	}
}

func TestFetchNotFound(t *testing.T) {
	c, _ := newClient(t)
	_, err := c.Fetch(context.Background(), assets.Temp("rgbyp_1.json"))
	if !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUploadServerError(t *testing.T) {
	c, store := newClient(t)
	store.FailUpload = func(assets.Ref) error { return errors.New("disk full") }
	if _, err := c.Upload(context.Background(), assets.Temp("a.png"), []byte("x"), true); err == nil {
		t.Error("expected error from failing server")
	}
}

func TestNewRejectsBadScheme(t *testing.T) {
	if _, err := New("ftp://example", nil); err == nil {
		t.Error("expected error for ftp scheme")
	}
}
