// Package naskah is the client for the document store: row reads and
// field-level writes over HTTP, row subscriptions over a websocket.
package naskah

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"naskahpad/internal/document/model"

	"github.com/gorilla/websocket"
)

// ErrNotFound is returned by updates addressed to a document that does not exist.
var ErrNotFound = errors.New("naskah: document not found")

type Client struct {
	baseURL *url.URL
	apiKey  string
	http    *http.Client
	dialer  *websocket.Dialer
}

func New(baseURL, apiKey string) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("naskah: invalid base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("naskah: unsupported scheme %q", u.Scheme)
	}
	// Requests are bounded by the caller's context.
	return &Client{
		baseURL: u,
		apiKey:  apiKey,
		http:    &http.Client{},
		dialer:  websocket.DefaultDialer,
	}, nil
}

var (
	defaultMu     sync.RWMutex
	defaultClient *Client
)

// Init sets up the process-wide client. It must run before Default is used.
func Init(baseURL, apiKey string) error {
	c, err := New(baseURL, apiKey)
	if err != nil {
		return err
	}
	defaultMu.Lock()
	defaultClient = c
	defaultMu.Unlock()
	return nil
}

// Default returns the client set up by Init, or nil.
func Default() *Client {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultClient
}

func (c *Client) Create(ctx context.Context, title string) (*model.Document, error) {
	var doc model.Document
	if err := c.do(ctx, http.MethodPost, "api/documents", model.CreateDocRequest{Title: title}, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Get returns (nil, nil) when the document does not exist.
func (c *Client) Get(ctx context.Context, id string) (*model.Document, error) {
	var doc model.Document
	err := c.do(ctx, http.MethodGet, "api/documents/"+url.PathEscape(id), nil, &doc)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Client) UpdateContent(ctx context.Context, id, content string) error {
	return c.do(ctx, http.MethodPatch, "api/documents/"+url.PathEscape(id)+"/content", model.UpdateContentRequest{Content: content}, nil)
}

func (c *Client) UpdateTitle(ctx context.Context, id, title string) error {
	return c.do(ctx, http.MethodPatch, "api/documents/"+url.PathEscape(id)+"/title", model.UpdateTitleRequest{Title: title}, nil)
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.JoinPath(path).String(), body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("naskah: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("naskah: %s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("naskah: decoding %s response: %w", path, err)
	}
	return nil
}
