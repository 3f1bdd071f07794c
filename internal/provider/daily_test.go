package provider

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestCreateRoom_Success(t *testing.T) {
    var gotAuth, gotPath string
    var gotBody map[string]interface{}

    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        gotAuth = r.Header.Get("Authorization")
        gotPath = r.URL.Path
        require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
        w.Header().Set("Content-Type", "application/json")
        _ = json.NewEncoder(w).Encode(map[string]string{
            "name": "room-1",
            "url":  "https://vs.daily.co/room-1",
        })
    }))
    defer srv.Close()

    client := NewDailyClient(srv.URL, "secret-key", 2*time.Second)
    url, err := client.CreateRoom(context.Background(), "room-1")
    require.NoError(t, err)

    assert.Equal(t, "https://vs.daily.co/room-1", url)
    assert.Equal(t, "Bearer secret-key", gotAuth)
    assert.Equal(t, "/rooms", gotPath)
    assert.Equal(t, "room-1", gotBody["name"])
    assert.Equal(t, "private", gotBody["privacy"])
}

func TestCreateRoom_ProviderErrorIncludesStatus(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusTooManyRequests)
        _, _ = w.Write([]byte(`{"error":"rate-limited"}`))
    }))
    defer srv.Close()

    client := NewDailyClient(srv.URL, "secret-key", 2*time.Second)
    _, err := client.CreateRoom(context.Background(), "room-1")
    require.Error(t, err)
    assert.Contains(t, err.Error(), "status 429")
    assert.Contains(t, err.Error(), "rate-limited")
}

func TestCreateRoom_MissingURLRejected(t *testing.T) {
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        _, _ = w.Write([]byte(`{"name":"room-1"}`))
    }))
    defer srv.Close()

    client := NewDailyClient(srv.URL, "secret-key", 2*time.Second)
    _, err := client.CreateRoom(context.Background(), "room-1")
    require.Error(t, err)
    assert.Contains(t, err.Error(), "missing url")
}

func TestCreateRoom_ContextCancellation(t *testing.T) {
    block := make(chan struct{})
    srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        <-block
    }))
    defer srv.Close()
    defer close(block)

    client := NewDailyClient(srv.URL, "secret-key", 10*time.Second)
    ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
    defer cancel()

    _, err := client.CreateRoom(ctx, "room-1")
    require.Error(t, err)
}
