package httpds

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// Remote is a data source served over HTTP(S).
type Remote struct {
	client *Client
	url    string
}

// NewRemote binds url to client. A nil client gets the defaults.
func NewRemote(client *Client, url string) *Remote {
	if client == nil {
		client = NewClient(Config{})
	}
	return &Remote{client: client, url: url}
}

// URL returns the bound URL.
func (r *Remote) URL() string { return r.url }

// Open fetches the URL and returns the body. Any non-2xx final status is an
// error.
func (r *Remote) Open(ctx context.Context) (io.ReadCloser, error) {
	resp, err := r.client.Get(ctx, r.url)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", r.url, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_ = resp.Body.Close()
		return nil, fmt.Errorf("fetch %s: %s", r.url, http.StatusText(resp.StatusCode))
	}
	return resp.Body, nil
}
