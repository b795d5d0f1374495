package chatpoll

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HTTPFetcher reads a thread from the API's thread endpoint.
type HTTPFetcher struct {
	BaseURL string
	OtherID string
	Token   string
	Client  *http.Client
}

func NewHTTPFetcher(baseURL, otherID, token string) *HTTPFetcher {
	return &HTTPFetcher{
		BaseURL: strings.TrimRight(baseURL, "/"),
		OtherID: otherID,
		Token:   token,
		Client:  &http.Client{Timeout: 10 * time.Second},
	}
}

type envelope struct {
	Success bool      `json:"success"`
	Data    []Message `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func (f *HTTPFetcher) Fetch(ctx context.Context) ([]Message, error) {
	endpoint := f.BaseURL + "/api/messages/thread/" + url.PathEscape(f.OtherID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+f.Token)
	req.Header.Set("Accept", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch thread: %w", err)
	}
	defer resp.Body.Close()

	var body envelope
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode thread (status %d): %w", resp.StatusCode, err)
	}
	if resp.StatusCode != http.StatusOK || !body.Success {
		msg := http.StatusText(resp.StatusCode)
		if body.Error != nil && body.Error.Message != "" {
			msg = body.Error.Message
		}
		return nil, fmt.Errorf("thread request failed: %d %s", resp.StatusCode, msg)
	}
	return body.Data, nil
}
