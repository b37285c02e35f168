package assetserver

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"rgbyp-maskeditor/internal/assets"
)

func upload(t *testing.T, h http.Handler, fields map[string]string, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write(data)
	for k, v := range fields {
		w.WriteField(k, v)
	}
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload/image", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestUploadThenView(t *testing.T) {
	store := assets.NewMemStore()
	h := New(store, nil).Handler()

	rec := upload(t, h, map[string]string{"type": "input", "subfolder": "rgbyp", "overwrite": "true"}, "a.png", []byte("PNGDATA"))
	if rec.Code != http.StatusOK {
		t.Fatalf("upload status = %d: %s", rec.Code, rec.Body.String())
	}
	var resp uploadResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Name != "a.png" || resp.Subfolder != "rgbyp" || resp.Type != "input" {
		t.Errorf("response = %+v", resp)
	}
	if !store.Has(assets.Input("rgbyp", "a.png")) {
		t.Error("blob not stored")
	}

	req := httptest.NewRequest(http.MethodGet, "/view?filename=a.png&subfolder=rgbyp&type=input", nil)
	view := httptest.NewRecorder()
	h.ServeHTTP(view, req)
	if view.Code != http.StatusOK {
		t.Fatalf("view status = %d", view.Code)
	}
	body, _ := io.ReadAll(view.Body)
	if string(body) != "PNGDATA" {
		t.Errorf("body = %q", body)
	}
	if ct := view.Header().Get("Content-Type"); ct != "image/png" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestViewMissing(t *testing.T) {
	h := New(assets.NewMemStore(), nil).Handler()
	req := httptest.NewRequest(http.MethodGet, "/view?filename=rgbyp_9.json&type=temp", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestBadRequests(t *testing.T) {
	h := New(assets.NewMemStore(), nil).Handler()

	rec := upload(t, h, map[string]string{"type": "output"}, "a.png", []byte("x"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad area status = %d", rec.Code)
	}

	rec = upload(t, h, map[string]string{"type": "input", "subfolder": "../../etc"}, "a.png", []byte("x"))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("traversal status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodPost, "/upload/image", bytes.NewBufferString("not multipart"))
	resp := httptest.NewRecorder()
	h.ServeHTTP(resp, req)
	if resp.Code != http.StatusBadRequest {
		t.Errorf("non-multipart status = %d", resp.Code)
	}
}

func TestUploadWithoutOverwriteKeepsExisting(t *testing.T) {
	store := assets.NewMemStore()
	h := New(store, nil).Handler()

	upload(t, h, map[string]string{"type": "temp"}, "m.png", []byte("1"))
	rec := upload(t, h, map[string]string{"type": "temp"}, "m.png", []byte("2"))
	var resp uploadResponse
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Name != "m (1).png" {
		t.Errorf("second name = %q", resp.Name)
	}
}

func TestHealth(t *testing.T) {
	h := New(assets.NewMemStore(), nil).Handler()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}
