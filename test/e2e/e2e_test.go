// test/e2e/e2e_test.go
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askliberia/internal/common/config"
	"askliberia/internal/common/database"
	"askliberia/internal/common/logger"
	"askliberia/internal/knowledge"
	"askliberia/internal/models"
	"askliberia/internal/server"
	"askliberia/internal/services/admin"
	"askliberia/internal/services/auth"
)

// scriptedBackend plays fixed generation streams so the full stack runs
// without the external service.
type scriptedBackend struct {
	searchChunks []knowledge.Chunk
	chatChunks   []knowledge.Chunk
	audio        []byte
}

func (b *scriptedBackend) GenerateStream(_ context.Context, _ knowledge.GenerateRequest) iter.Seq2[knowledge.Chunk, error] {
	return replay(b.searchChunks)
}

func (b *scriptedBackend) ChatStream(_ context.Context, _ knowledge.ChatRequest) iter.Seq2[knowledge.Chunk, error] {
	return replay(b.chatChunks)
}

func (b *scriptedBackend) Synthesize(_ context.Context, _ knowledge.SpeechRequest) ([]byte, error) {
	return b.audio, nil
}

func replay(chunks []knowledge.Chunk) iter.Seq2[knowledge.Chunk, error] {
	return func(yield func(knowledge.Chunk, error) bool) {
		for _, ch := range chunks {
			if !yield(ch, nil) {
				return
			}
		}
	}
}

func startStack(t *testing.T, backend *scriptedBackend) string {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	log := logger.NewTestLogger(t)

	know := knowledge.NewService(knowledge.DefaultConfig(), backend, backend, backend, log)
	adminSvc := admin.NewService(admin.DefaultConfig(), store, log)
	authSvc := auth.NewService(auth.DefaultConfig(), store, log)

	srv := server.New(config.ServerConfig{Address: ":0"}, know, adminSvc, authSvc, store, log)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts.URL
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func post(t *testing.T, url string, payload interface{}) (int, string) {
	t.Helper()
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func lastEventData(body, event string) string {
	var data string
	for _, block := range strings.Split(body, "\n\n") {
		if !strings.Contains(block, "event: "+event) {
			continue
		}
		for _, line := range strings.Split(block, "\n") {
			if strings.HasPrefix(line, "data: ") {
				data = strings.TrimPrefix(line, "data: ")
			}
		}
	}
	return data
}

// TestSearchToAdminFlow drives the visitor path end to end: search streams a
// grounded answer, the admin signs in and sees the search in the analytics
// view.
func TestSearchToAdminFlow(t *testing.T) {
	backend := &scriptedBackend{
		searchChunks: []knowledge.Chunk{
			{Text: "Liberia declared independence ", Citations: []models.Source{
				{Title: "National Archives", URI: "https://example.lr/archives"},
			}},
			{Text: "on July 26, 1847.", Citations: []models.Source{
				{Title: "Duplicate", URI: "https://example.lr/archives"},
				{Title: "History Portal", URI: "https://example.lr/history"},
			}},
		},
	}
	baseURL := startStack(t, backend)

	status, body := get(t, baseURL+"/api/search?q=independence&county=Montserrado&lang=English")
	require.Equal(t, http.StatusOK, status)

	var final models.Snapshot
	require.NoError(t, json.Unmarshal([]byte(lastEventData(body, "result")), &final))
	assert.True(t, final.Final)
	assert.Equal(t, "Liberia declared independence on July 26, 1847.", final.Text)
	require.Len(t, final.Sources, 2)
	assert.Equal(t, "National Archives", final.Sources[0].Title)

	status, _ = post(t, baseURL+"/api/admin/login", map[string]string{"password": "admin123"})
	require.Equal(t, http.StatusOK, status)

	status, body = get(t, baseURL+"/api/admin/logs")
	require.Equal(t, http.StatusOK, status)
	var logs []models.SearchLog
	require.NoError(t, json.Unmarshal([]byte(body), &logs))
	require.Len(t, logs, 1)
	assert.Equal(t, "independence", logs[0].Query)
	assert.Equal(t, "Montserrado", logs[0].Location)

	status, body = get(t, baseURL+"/api/admin/stats")
	require.Equal(t, http.StatusOK, status)
	var stats models.Stats
	require.NoError(t, json.Unmarshal([]byte(body), &stats))
	assert.Equal(t, 1, stats.TotalSearches)
}

// TestChatAndSpeechFlow follows a chat turn with a read-aloud of the reply.
func TestChatAndSpeechFlow(t *testing.T) {
	backend := &scriptedBackend{
		chatChunks: []knowledge.Chunk{
			{Text: "Da true, "},
			{Text: "Monrovia na the capital."},
		},
		audio: []byte("pcm"),
	}
	baseURL := startStack(t, backend)

	status, body := post(t, baseURL+"/api/chat", map[string]interface{}{
		"message": "Wha the capital?",
		"lang":    "Koloqua",
	})
	require.Equal(t, http.StatusOK, status)

	var reply map[string]string
	require.NoError(t, json.Unmarshal([]byte(lastEventData(body, "result")), &reply))
	assert.Equal(t, "Da true, Monrovia na the capital.", reply["text"])

	status, body = post(t, baseURL+"/api/speech", map[string]string{"text": reply["text"]})
	require.Equal(t, http.StatusOK, status)

	var speech map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &speech))
	assert.Equal(t, true, speech["available"])
	assert.NotEmpty(t, speech["audio"])
}

// TestAccountAndPortalFlow covers signup, key request and admin approval.
func TestAccountAndPortalFlow(t *testing.T) {
	baseURL := startStack(t, &scriptedBackend{})

	status, _ := post(t, baseURL+"/api/auth/signup", map[string]string{
		"name":     "Varney Sherman",
		"email":    "varney@example.lr",
		"password": "x",
	})
	require.Equal(t, http.StatusCreated, status)

	status, body := post(t, baseURL+"/api/requests", map[string]string{
		"email": "varney@example.lr",
		"type":  "pro",
	})
	require.Equal(t, http.StatusCreated, status)
	var req models.APIRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))

	status, _ = post(t, baseURL+"/api/admin/login", map[string]string{"password": "admin123"})
	require.Equal(t, http.StatusOK, status)

	status, body = post(t, baseURL+"/api/admin/requests/decide", map[string]string{
		"id":     req.ID,
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, status)
	var approved models.APIRequest
	require.NoError(t, json.Unmarshal([]byte(body), &approved))
	assert.True(t, strings.HasPrefix(approved.APIKey, "ask_lib_"))

	status, body = get(t, baseURL+"/api/admin/stats")
	require.Equal(t, http.StatusOK, status)
	var stats models.Stats
	require.NoError(t, json.Unmarshal([]byte(body), &stats))
	assert.Equal(t, 1, stats.ActiveUsers)
	assert.Equal(t, 0, stats.PendingRequests)
}
