package images

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const DefaultWgerBaseURL = "https://wger.de"

// WgerClient looks up an exercise image by name through the wger fuzzy
// search endpoint. The lookup is best effort: no match is not an error.
type WgerClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewWgerClient(baseURL string, timeout time.Duration) *WgerClient {
	if baseURL == "" {
		baseURL = DefaultWgerBaseURL
	}
	return &WgerClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

type searchResponse struct {
	Suggestions []struct {
		Value string `json:"value"`
		Data  struct {
			Image string `json:"image"`
		} `json:"data"`
	} `json:"suggestions"`
}

// SearchImage returns the image URL of the first suggestion that has one,
// or "" when nothing matched. Relative image paths are resolved against
// the API host.
func (c *WgerClient) SearchImage(ctx context.Context, exerciseName string) (string, error) {
	term := strings.TrimSpace(exerciseName)
	if term == "" {
		return "", nil
	}

	searchURL := fmt.Sprintf("%s/api/v2/exercise/search/?term=%s", c.baseURL, url.QueryEscape(term))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return "", fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("exercise search: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Debugf("exercise search for %q returned status %d", term, resp.StatusCode)
		return "", nil
	}

	var result searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode search response: %w", err)
	}

	for _, suggestion := range result.Suggestions {
		if suggestion.Data.Image == "" {
			continue
		}
		image := suggestion.Data.Image
		if strings.HasPrefix(image, "/") {
			image = c.baseURL + image
		}
		return image, nil
	}

	return "", nil
}
