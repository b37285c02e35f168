// Package httpstore is an assets.Store client for the host's image
// endpoints:
//
//	POST /upload/image  multipart: image, type, subfolder, overwrite
//	GET  /view?filename=&subfolder=&type=
package httpstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"rgbyp-maskeditor/internal/assets"
)

// DefaultTimeout bounds a single request when the caller's context has no
// deadline.
const DefaultTimeout = 30 * time.Second

// Client talks to an asset server.
type Client struct {
	base *url.URL
	http *http.Client
}

var _ assets.Store = (*Client)(nil)

// New creates a client for the server at baseURL. A nil httpClient uses a
// client with DefaultTimeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse asset server URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("asset server URL %q: unsupported scheme", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{base: u, http: httpClient}, nil
}

// UploadResponse is the JSON body returned by the upload endpoint.
type UploadResponse struct {
	Name      string `json:"name"`
	Subfolder string `json:"subfolder"`
	Type      string `json:"type"`
}

func (c *Client) endpoint(path string, q url.Values) string {
	u := *c.base
	u.Path = c.base.Path + path
	if q != nil {
		u.RawQuery = q.Encode()
	}
	return u.String()
}

// Upload implements assets.Store.
func (c *Client) Upload(ctx context.Context, ref assets.Ref, data []byte, overwrite bool) (assets.Ref, error) {
	if err := ref.Validate(); err != nil {
		return assets.Ref{}, err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image", ref.Filename)
	if err != nil {
		return assets.Ref{}, fmt.Errorf("failed to build upload form: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return assets.Ref{}, fmt.Errorf("failed to build upload form: %w", err)
	}
	fields := [][2]string{
		{"type", string(ref.Area)},
		{"subfolder", ref.Subfolder},
		{"overwrite", strconv.FormatBool(overwrite)},
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return assets.Ref{}, fmt.Errorf("failed to build upload form: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return assets.Ref{}, fmt.Errorf("failed to build upload form: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("/upload/image", nil), &body)
	if err != nil {
		return assets.Ref{}, fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return assets.Ref{}, fmt.Errorf("failed to upload %s: %w", ref, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return assets.Ref{}, fmt.Errorf("failed to upload %s: %s: %s", ref, resp.Status, bytes.TrimSpace(msg))
	}

	var out UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return assets.Ref{}, fmt.Errorf("failed to decode upload response: %w", err)
	}
	area, err := assets.ParseArea(out.Type)
	if err != nil {
		return assets.Ref{}, err
	}
	return assets.Ref{Filename: out.Name, Subfolder: out.Subfolder, Area: area}, nil
}

// Fetch implements assets.Store.
func (c *Client) Fetch(ctx context.Context, ref assets.Ref) ([]byte, error) {
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("filename", ref.Filename)
	q.Set("subfolder", ref.Subfolder)
	q.Set("type", string(ref.Area))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("/view", q), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create view request: %w", err)
	}
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", ref, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", assets.ErrNotFound, ref)
	default:
		return nil, fmt.Errorf("failed to fetch %s: %s", ref, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", ref, err)
	}
	return data, nil
}
