package images

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

// DiskCache stores downloaded exercise images under a root directory.
// Filenames are derived from a timestamp plus a random suffix: unique
// enough in practice, and a re-download never reuses a stale file.
type DiskCache struct {
	rootDir    string
	httpClient *http.Client
}

func NewDiskCache(rootDir string, timeout time.Duration) (*DiskCache, error) {
	if rootDir == "" {
		return nil, errors.New("cache root dir cannot be empty")
	}
	if err := os.MkdirAll(rootDir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache dir: %w", err)
	}
	return &DiskCache{
		rootDir:    rootDir,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randomSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}

func (c *DiskCache) newFilename(remoteURL string) string {
	ext := strings.ToLower(path.Ext(remoteURL))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		ext = ".jpg"
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 10) + "_" + randomSuffix(7) + ext
}

// Materialize downloads the remote image and returns the path of the
// local copy. Callers treat a failure as "keep the remote URL" and never
// let it abort the surrounding operation.
func (c *DiskCache) Materialize(ctx context.Context, remoteURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, remoteURL, nil)
	if err != nil {
		return "", fmt.Errorf("build image request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download image: unexpected status %d", resp.StatusCode)
	}

	localPath := filepath.Join(c.rootDir, c.newFilename(remoteURL))

	f, err := os.Create(localPath)
	if err != nil {
		return "", fmt.Errorf("create image file: %w", err)
	}

	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		if removeErr := os.Remove(localPath); removeErr != nil {
			log.Warnf("failed to clean up partial image file %s: %v", localPath, removeErr)
		}
		return "", fmt.Errorf("write image file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close image file: %w", err)
	}

	log.Debugf("image cached: %s -> %s", remoteURL, localPath)
	return localPath, nil
}

// Resolvable reports whether a local reference still points at a file on
// disk. Remote URLs are never resolvable locally.
func (c *DiskCache) Resolvable(localRef string) bool {
	if localRef == "" {
		return false
	}
	if strings.HasPrefix(localRef, "http://") || strings.HasPrefix(localRef, "https://") {
		return false
	}
	_, err := os.Stat(localRef)
	return err == nil
}
