// Package provider contains the adapter for the external video-room
// provider (Daily).  The matchmaking core calls it once per newly
// created room; failures are surfaced to the caller and never affect
// committed pairing state.
package provider

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "net/http"
    "time"
)

// DailyClient creates video rooms through Daily's REST API.  The room
// identifier generated by the pairing engine doubles as the Daily room
// name, so the join URL is stable for a given room.
type DailyClient struct {
    baseURL string
    apiKey  string
    client  *http.Client
}

// NewDailyClient returns a client for the given API base URL (for
// example "https://api.daily.co/v1") and bearer key.  Requests time
// out after the given duration so a slow provider cannot stall join
// responses indefinitely.
func NewDailyClient(baseURL, apiKey string, timeout time.Duration) *DailyClient {
    if timeout <= 0 {
        timeout = 10 * time.Second
    }
    return &DailyClient{
        baseURL: baseURL,
        apiKey:  apiKey,
        client:  &http.Client{Timeout: timeout},
    }
}

// CreateRoom provisions a private room named after the room ID and
// returns its join URL.  Non-2xx responses are returned as errors with
// the provider's status code so operators can see rate-limit and auth
// problems in the logs.
func (d *DailyClient) CreateRoom(ctx context.Context, roomID string) (string, error) {
    payload := map[string]interface{}{
        "name":    roomID,
        "privacy": "private",
    }
    body, err := json.Marshal(payload)
    if err != nil {
        return "", fmt.Errorf("daily: marshal room request: %w", err)
    }
    req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL+"/rooms", bytes.NewReader(body))
    if err != nil {
        return "", fmt.Errorf("daily: build room request: %w", err)
    }
    req.Header.Set("Content-Type", "application/json")
    req.Header.Set("Authorization", "Bearer "+d.apiKey)

    resp, err := d.client.Do(req)
    if err != nil {
        return "", fmt.Errorf("daily: create room: %w", err)
    }
    defer resp.Body.Close()

    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        // Read a bounded slice of the body for the error message.
        msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
        return "", fmt.Errorf("daily: create room: status %d: %s", resp.StatusCode, string(msg))
    }

    var out struct {
        URL string `json:"url"`
    }
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
        return "", fmt.Errorf("daily: decode room response: %w", err)
    }
    if out.URL == "" {
        return "", fmt.Errorf("daily: room response missing url")
    }
    return out.URL, nil
}
