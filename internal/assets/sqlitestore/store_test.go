package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"rgbyp-maskeditor/internal/assets"
)

func openMemory(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	// Every connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	s, err := New(db)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestUploadFetch(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()

	ref := assets.Temp("rgbyp_7.json")
	if _, err := s.Upload(ctx, ref, []byte(`{"mask":"a"}`), true); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	data, err := s.Fetch(ctx, ref)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if string(data) != `{"mask":"a"}` {
		t.Errorf("data = %q", data)
	}

	if _, err := s.Upload(ctx, ref, []byte(`{}`), true); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	data, _ = s.Fetch(ctx, ref)
	if string(data) != `{}` {
		t.Errorf("after overwrite data = %q", data)
	}
}

func TestFetchMissing(t *testing.T) {
	s := openMemory(t)
	_, err := s.Fetch(context.Background(), assets.Temp("missing.png"))
	if !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestUploadWithoutOverwriteRenames(t *testing.T) {
	s := openMemory(t)
	ctx := context.Background()
	ref := assets.Input("rgbyp", "c.png")

	if _, err := s.Upload(ctx, ref, []byte("1"), false); err != nil {
		t.Fatal(err)
	}
	second, err := s.Upload(ctx, ref, []byte("2"), false)
	if err != nil {
		t.Fatal(err)
	}
	if second.Filename != "c (1).png" {
		t.Errorf("second name = %q", second.Filename)
	}

	refs, err := s.List(ctx, assets.AreaInput)
	if err != nil {
		t.Fatal(err)
	}
	if len(refs) != 2 || refs[0].Subfolder != "rgbyp" {
		t.Errorf("List = %+v", refs)
	}
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "assets.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	ctx := context.Background()
	if _, err := s.Upload(ctx, assets.Temp("a"), []byte("x"), true); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	data, err := s.Fetch(ctx, assets.Temp("a"))
	if err != nil || string(data) != "x" {
		t.Errorf("Fetch after reopen = %q, %v", data, err)
	}
}
