package kvstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/an0763229796-cpu/AlphaDrop/internal/apperr"
)

// Remote implements Store over an Upstash-compatible REST endpoint:
//
//	GET  {base}/get/{key}  -> {"result": "<value>"} or {"result": null}
//	POST {base}/set/{key}  with the raw value as body
//
// Requests carry a bearer token. There are no retries; a failed round trip
// surfaces as an error and the caller decides how to degrade.
type Remote struct {
	baseURL string
	token   string
	client  *http.Client
}

var _ Store = (*Remote)(nil)

// NewRemote creates a Remote store for the given base URL and bearer token.
func NewRemote(baseURL, token string) *Remote {
	return &Remote{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type remoteResult struct {
	Result *string `json:"result"`
}

// Get fetches the value for key from the remote store.
func (r *Remote) Get(ctx context.Context, key string) ([]byte, error) {
	endpoint := r.baseURL + "/get/" + url.PathEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("kvstore: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("kvstore: get %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperr.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, remoteError("get", key, resp)
	}

	var out remoteResult
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("kvstore: decode get %s: %w", key, err)
	}
	if out.Result == nil {
		return nil, apperr.ErrNotFound
	}
	return []byte(*out.Result), nil
}

// Set writes the value for key to the remote store.
func (r *Remote) Set(ctx context.Context, key string, value []byte) error {
	endpoint := r.baseURL + "/set/" + url.PathEscape(key)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(value))
	if err != nil {
		return fmt.Errorf("kvstore: new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("kvstore: set %s: %w", key, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return remoteError("set", key, resp)
	}
	return nil
}

// Close is a no-op for the remote backend.
func (r *Remote) Close() error { return nil }

func remoteError(op, key string, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	return fmt.Errorf("kvstore: %s %s: remote store error %s: %s",
		op, key, resp.Status, strings.TrimSpace(string(body)))
}
