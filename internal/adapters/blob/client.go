package blob

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

var (
	ErrSnapshotNotFound = errors.New("no snapshot for that sync id")
	ErrEmptySyncID      = errors.New("sync id cannot be empty")
)

// Client talks to the remote snapshot service. Snapshots are opaque
// string mappings to this layer; all domain validation happened when the
// data was written locally.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type uploadResponse struct {
	SyncID string `json:"sync_id"`
}

// Upload sends the full snapshot and returns the identifier the service
// assigned to it.
func (c *Client) Upload(ctx context.Context, snapshot map[string]string) (string, error) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return "", fmt.Errorf("encode snapshot: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/snapshots", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("upload snapshot: unexpected status %d", resp.StatusCode)
	}

	var result uploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode upload response: %w", err)
	}
	if result.SyncID == "" {
		return "", errors.New("upload response carries no sync id")
	}

	return result.SyncID, nil
}

// Download fetches the snapshot stored under syncID. An unknown id is
// reported as ErrSnapshotNotFound, distinct from transport failures.
func (c *Client) Download(ctx context.Context, syncID string) (map[string]string, error) {
	if strings.TrimSpace(syncID) == "" {
		return nil, ErrEmptySyncID
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/snapshots/"+syncID, nil)
	if err != nil {
		return nil, fmt.Errorf("build download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download snapshot: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSnapshotNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download snapshot: unexpected status %d", resp.StatusCode)
	}

	var snapshot map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&snapshot); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}

	return snapshot, nil
}
