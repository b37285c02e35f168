package assets

import (
	"context"
	"errors"
	"testing"
)

func TestRefKey(t *testing.T) {
	tests := []struct {
		ref  Ref
		want string
	}{
		{Temp("rgbyp_7.json"), "temp/rgbyp_7.json"},
		{Input("rgbyp", "a.png"), "input/rgbyp/a.png"},
		{Ref{Filename: "b.png"}, "temp/b.png"},
	}
	for _, tt := range tests {
		if got := tt.ref.Key(); got != tt.want {
			t.Errorf("Key(%+v) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	bad := []Ref{
		{Filename: "", Area: AreaTemp},
		{Filename: "../x", Area: AreaTemp},
		{Filename: "x", Subfolder: "../up", Area: AreaInput},
		{Filename: "x", Subfolder: "/abs", Area: AreaInput},
		{Filename: "x", Area: "output"},
	}
	for _, r := range bad {
		if err := r.Validate(); !errors.Is(err, ErrInvalidRef) {
			t.Errorf("Validate(%+v) = %v, want ErrInvalidRef", r, err)
		}
	}
	if err := Input("rgbyp/sub", "ok.png").Validate(); err != nil {
		t.Errorf("valid ref rejected: %v", err)
	}
}

func TestUniqueName(t *testing.T) {
	taken := map[string]bool{"a.png": true, "a (1).png": true}
	got := UniqueName("a.png", func(n string) bool { return taken[n] })
	if got != "a (2).png" {
		t.Errorf("UniqueName = %q", got)
	}
}

func TestMemStore(t *testing.T) {
	s := NewMemStore()
	ctx := context.Background()
	if _, err := s.Fetch(ctx, Temp("x")); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
	if _, err := s.Upload(ctx, Temp("x"), []byte("abc"), true); err != nil {
		t.Fatal(err)
	}
	data, err := s.Fetch(ctx, Temp("x"))
	if err != nil || string(data) != "abc" {
		t.Fatalf("Fetch = %q, %v", data, err)
	}
	data[0] = 'z'
	again, _ := s.Fetch(ctx, Temp("x"))
	if string(again) != "abc" {
		t.Error("Fetch returned shared buffer")
	}

	s.FailUpload = func(Ref) error { return errors.New("boom") }
	if _, err := s.Upload(ctx, Temp("y"), nil, true); err == nil {
		t.Error("FailUpload not honored")
	}
}
