package fsstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"rgbyp-maskeditor/internal/assets"
)

func TestUploadFetch(t *testing.T) {
	dir := t.TempDir()
	s, err := New(dir)
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()

	ref := assets.Input("rgbyp", "a_rgbyp_composite.png")
	got, err := s.Upload(ctx, ref, []byte("png"), true)
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if got != ref {
		t.Errorf("ref = %+v, want %+v", got, ref)
	}
	if _, err := os.Stat(filepath.Join(dir, "input", "rgbyp", "a_rgbyp_composite.png")); err != nil {
		t.Errorf("file not at expected path: %v", err)
	}

	data, err := s.Fetch(ctx, ref)
	if err != nil || string(data) != "png" {
		t.Fatalf("Fetch = %q, %v", data, err)
	}
}

func TestOverwriteAndUnique(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	ref := assets.Temp("m.png")

	if _, err := s.Upload(ctx, ref, []byte("1"), true); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Upload(ctx, ref, []byte("2"), true); err != nil {
		t.Fatal(err)
	}
	data, _ := s.Fetch(ctx, ref)
	if string(data) != "2" {
		t.Errorf("overwrite kept %q", data)
	}

	renamed, err := s.Upload(ctx, ref, []byte("3"), false)
	if err != nil {
		t.Fatal(err)
	}
	if renamed.Filename != "m (1).png" {
		t.Errorf("unique name = %q", renamed.Filename)
	}
}

func TestFetchMissing(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	_, err = s.Fetch(context.Background(), assets.Temp("nope.json"))
	if !errors.Is(err, assets.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRejectsTraversal(t *testing.T) {
	s, err := New(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ref := assets.Ref{Filename: "x.png", Subfolder: "../..", Area: assets.AreaInput}
	if _, err := s.Upload(context.Background(), ref, nil, true); !errors.Is(err, assets.ErrInvalidRef) {
		t.Errorf("err = %v, want ErrInvalidRef", err)
	}
}
