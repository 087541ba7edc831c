package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
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
	"askliberia/internal/services/admin"
	"askliberia/internal/services/auth"
)

// ==========================
// Test Helper Functions
// ==========================

type fakeStream struct {
	chunks []knowledge.Chunk
	err    error
}

func (f *fakeStream) GenerateStream(_ context.Context, _ knowledge.GenerateRequest) iter.Seq2[knowledge.Chunk, error] {
	return f.seq()
}

func (f *fakeStream) ChatStream(_ context.Context, _ knowledge.ChatRequest) iter.Seq2[knowledge.Chunk, error] {
	return f.seq()
}

func (f *fakeStream) seq() iter.Seq2[knowledge.Chunk, error] {
	return func(yield func(knowledge.Chunk, error) bool) {
		for _, ch := range f.chunks {
			if !yield(ch, nil) {
				return
			}
		}
		if f.err != nil {
			yield(knowledge.Chunk{}, f.err)
		}
	}
}

type fakeSpeech struct {
	audio []byte
	err   error
}

func (f *fakeSpeech) Synthesize(_ context.Context, _ knowledge.SpeechRequest) ([]byte, error) {
	return f.audio, f.err
}

type testEnv struct {
	server *httptest.Server
	admin  *admin.Service
	auth   *auth.Service
}

func setupEnv(t *testing.T, stream *fakeStream, speech *fakeSpeech) *testEnv {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	log := logger.NewTestLogger(t)

	if speech == nil {
		speech = &fakeSpeech{}
	}
	know := knowledge.NewService(knowledge.DefaultConfig(), stream, stream, speech, log)
	adminSvc := admin.NewService(admin.DefaultConfig(), store, log)
	authSvc := auth.NewService(auth.DefaultConfig(), store, log)

	srv := New(config.ServerConfig{Address: ":0"}, know, adminSvc, authSvc, store, log)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return &testEnv{server: ts, admin: adminSvc, auth: authSvc}
}

type sseEvent struct {
	Name string
	Data string
}

func parseSSE(t *testing.T, body string) []sseEvent {
	t.Helper()
	var events []sseEvent
	for _, block := range strings.Split(body, "\n\n") {
		var ev sseEvent
		for _, line := range strings.Split(block, "\n") {
			switch {
			case strings.HasPrefix(line, "event: "):
				ev.Name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				ev.Data = strings.TrimPrefix(line, "data: ")
			}
		}
		if ev.Name != "" {
			events = append(events, ev)
		}
	}
	return events
}

func getBody(t *testing.T, url string) (int, string) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body)
}

func postJSON(t *testing.T, url string, payload interface{}) (int, string) {
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

func adminLogin(t *testing.T, env *testEnv) {
	t.Helper()
	status, _ := postJSON(t, env.server.URL+"/api/admin/login", map[string]string{"password": "admin123"})
	require.Equal(t, http.StatusOK, status)
}

// ==========================
// Search streaming
// ==========================

func TestSearchStreamsSnapshotsAndResult(t *testing.T) {
	stream := &fakeStream{chunks: []knowledge.Chunk{
		{Text: "Monrovia is ", Citations: []models.Source{{Title: "Wiki", URI: "https://example.lr/w"}}},
		{Text: "the capital."},
	}}
	env := setupEnv(t, stream, nil)

	status, body := getBody(t, env.server.URL+"/api/search?q=capital+of+Liberia")
	require.Equal(t, http.StatusOK, status)

	events := parseSSE(t, body)
	require.Len(t, events, 3)
	assert.Equal(t, "snapshot", events[0].Name)
	assert.Equal(t, "snapshot", events[1].Name)
	assert.Equal(t, "result", events[2].Name)

	var final models.Snapshot
	require.NoError(t, json.Unmarshal([]byte(events[2].Data), &final))
	assert.True(t, final.Final)
	assert.Equal(t, "Monrovia is the capital.", final.Text)
	require.Len(t, final.Sources, 1)
	assert.Equal(t, "Wiki", final.Sources[0].Title)
}

func TestSearchRecordsLog(t *testing.T) {
	stream := &fakeStream{chunks: []knowledge.Chunk{{Text: "x"}}}
	env := setupEnv(t, stream, nil)

	status, _ := getBody(t, env.server.URL+"/api/search?q=rubber+exports&county=Margibi&lang=Koloqua")
	require.Equal(t, http.StatusOK, status)

	logs, err := env.admin.GetLogs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "rubber exports", logs[0].Query)
	assert.Equal(t, "Margibi", logs[0].Location)
	assert.Equal(t, models.LanguageKoloqua, logs[0].Language)
}

func TestSearchValidation(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	status, _ := getBody(t, env.server.URL+"/api/search")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = getBody(t, env.server.URL+"/api/search?q=x&lang=French")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = getBody(t, env.server.URL+"/api/search?q=x&county=Atlantis")
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSearchErrorStreamsFallbackResult(t *testing.T) {
	stream := &fakeStream{err: fmt.Errorf("upstream down")}
	env := setupEnv(t, stream, nil)

	status, body := getBody(t, env.server.URL+"/api/search?q=anything")
	require.Equal(t, http.StatusOK, status)

	events := parseSSE(t, body)
	require.Len(t, events, 1)
	assert.Equal(t, "result", events[0].Name)

	var final models.Snapshot
	require.NoError(t, json.Unmarshal([]byte(events[0].Data), &final))
	assert.Equal(t, knowledge.FallbackSearchError, final.Text)
	assert.Empty(t, final.Sources)
}

// scriptedGen blocks its first stream mid-way so a second request can
// supersede it.
type scriptedGen struct {
	mu             sync.Mutex
	calls          int
	firstChunkSent chan struct{}
	release        chan struct{}
}

func (g *scriptedGen) GenerateStream(_ context.Context, _ knowledge.GenerateRequest) iter.Seq2[knowledge.Chunk, error] {
	g.mu.Lock()
	g.calls++
	call := g.calls
	g.mu.Unlock()

	return func(yield func(knowledge.Chunk, error) bool) {
		if call == 1 {
			if !yield(knowledge.Chunk{Text: "stale "}, nil) {
				return
			}
			close(g.firstChunkSent)
			<-g.release
			yield(knowledge.Chunk{Text: "answer"}, nil)
			return
		}
		yield(knowledge.Chunk{Text: "fresh answer"}, nil)
	}
}

func (g *scriptedGen) ChatStream(_ context.Context, _ knowledge.ChatRequest) iter.Seq2[knowledge.Chunk, error] {
	return func(yield func(knowledge.Chunk, error) bool) {}
}

func TestSearchNewerRequestSupersedesOlder(t *testing.T) {
	gen := &scriptedGen{
		firstChunkSent: make(chan struct{}),
		release:        make(chan struct{}),
	}

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	store := database.NewRedisFromClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	log := logger.NewTestLogger(t)
	know := knowledge.NewService(knowledge.DefaultConfig(), gen, gen, &fakeSpeech{}, log)
	srv := New(config.ServerConfig{Address: ":0"},
		know,
		admin.NewService(admin.DefaultConfig(), store, log),
		auth.NewService(auth.DefaultConfig(), store, log),
		store, log)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	firstBody := make(chan string, 1)
	go func() {
		resp, err := http.Get(ts.URL + "/api/search?q=old&surface=home")
		if err != nil {
			firstBody <- "request failed: " + err.Error()
			return
		}
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		firstBody <- string(data)
	}()

	<-gen.firstChunkSent

	// Second request on the same surface supersedes the first.
	status, secondRaw := getBody(t, ts.URL+"/api/search?q=new&surface=home")
	require.Equal(t, http.StatusOK, status)
	close(gen.release)

	second := parseSSE(t, secondRaw)
	require.NotEmpty(t, second)
	assert.Equal(t, "result", second[len(second)-1].Name)
	var fresh models.Snapshot
	require.NoError(t, json.Unmarshal([]byte(second[len(second)-1].Data), &fresh))
	assert.Equal(t, "fresh answer", fresh.Text)

	first := parseSSE(t, <-firstBody)
	for _, ev := range first {
		assert.NotEqual(t, "result", ev.Name, "superseded run must not publish a result")
	}
}

// ==========================
// Chat streaming
// ==========================

func TestChatStreamsDeltasAndResult(t *testing.T) {
	stream := &fakeStream{chunks: []knowledge.Chunk{
		{Text: "My people, "},
		{Text: "I here for y'all."},
	}}
	env := setupEnv(t, stream, nil)

	status, body := postJSON(t, env.server.URL+"/api/chat", map[string]interface{}{
		"message": "hello",
		"lang":    "Koloqua",
	})
	require.Equal(t, http.StatusOK, status)

	events := parseSSE(t, body)
	require.Len(t, events, 3)
	assert.Equal(t, "delta", events[0].Name)
	assert.Equal(t, "delta", events[1].Name)
	assert.Equal(t, "result", events[2].Name)

	var final map[string]string
	require.NoError(t, json.Unmarshal([]byte(events[2].Data), &final))
	assert.Equal(t, "My people, I here for y'all.", final["text"])
}

func TestChatRequiresMessage(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	status, _ := postJSON(t, env.server.URL+"/api/chat", map[string]interface{}{"lang": "English"})
	assert.Equal(t, http.StatusBadRequest, status)
}

// ==========================
// Speech
// ==========================

func TestSpeechReturnsEncodedAudio(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, &fakeSpeech{audio: []byte("pcmdata")})

	status, body := postJSON(t, env.server.URL+"/api/speech", map[string]string{"text": "Welcome"})
	require.Equal(t, http.StatusOK, status)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, true, resp["available"])
	assert.Equal(t, "cGNtZGF0YQ==", resp["audio"])
	assert.Equal(t, float64(24000), resp["sampleRate"])
	assert.Equal(t, float64(1), resp["channels"])
}

func TestSpeechUnavailableOnFailure(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, &fakeSpeech{err: fmt.Errorf("no tts")})

	status, body := postJSON(t, env.server.URL+"/api/speech", map[string]string{"text": "Welcome"})
	require.Equal(t, http.StatusOK, status)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	assert.Equal(t, false, resp["available"])
}

// ==========================
// Admin console
// ==========================

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	status, _ := postJSON(t, env.server.URL+"/api/admin/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestAdminEndpointsRequireSession(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	status, _ := getBody(t, env.server.URL+"/api/admin/logs")
	assert.Equal(t, http.StatusUnauthorized, status)

	adminLogin(t, env)
	status, _ = getBody(t, env.server.URL+"/api/admin/logs")
	assert.Equal(t, http.StatusOK, status)
}

func TestAPIRequestLifecycleOverHTTP(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	status, body := postJSON(t, env.server.URL+"/api/requests", map[string]string{
		"email": "dev@example.lr",
		"type":  "free",
	})
	require.Equal(t, http.StatusCreated, status)

	var created models.APIRequest
	require.NoError(t, json.Unmarshal([]byte(body), &created))
	assert.Equal(t, models.RequestPending, created.Status)

	adminLogin(t, env)
	status, body = postJSON(t, env.server.URL+"/api/admin/requests/decide", map[string]string{
		"id":     created.ID,
		"status": "approved",
	})
	require.Equal(t, http.StatusOK, status)

	var decided models.APIRequest
	require.NoError(t, json.Unmarshal([]byte(body), &decided))
	assert.True(t, strings.HasPrefix(decided.APIKey, "ask_lib_"))
}

func TestAPIRequestValidation(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	status, _ := postJSON(t, env.server.URL+"/api/requests", map[string]string{
		"email": "dev@example.lr",
		"type":  "platinum",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestSponsoredLifecycleOverHTTP(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	// Public list seeds on first read.
	status, body := getBody(t, env.server.URL+"/api/sponsored")
	require.Equal(t, http.StatusOK, status)
	var items []models.SponsoredItem
	require.NoError(t, json.Unmarshal([]byte(body), &items))
	require.Len(t, items, 3)

	// Adding requires the admin session.
	payload := map[string]string{
		"title":       "Sapo National Park",
		"description": "Largest protected rainforest.",
		"imageUrl":    "https://example.lr/sapo.jpg",
		"tag":         "TOURISM",
	}
	status, _ = postJSON(t, env.server.URL+"/api/admin/sponsored", payload)
	require.Equal(t, http.StatusUnauthorized, status)

	adminLogin(t, env)
	status, body = postJSON(t, env.server.URL+"/api/admin/sponsored", payload)
	require.Equal(t, http.StatusCreated, status)

	var added models.SponsoredItem
	require.NoError(t, json.Unmarshal([]byte(body), &added))
	require.NotEmpty(t, added.ID)

	req, err := http.NewRequest(http.MethodDelete, env.server.URL+"/api/admin/sponsored/"+added.ID, nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSponsoredValidation(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)
	adminLogin(t, env)

	status, _ := postJSON(t, env.server.URL+"/api/admin/sponsored", map[string]string{
		"description": "missing title",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDonationOverHTTP(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	status, _ := postJSON(t, env.server.URL+"/api/donations", map[string]string{
		"amount": "25",
		"method": "local",
	})
	require.Equal(t, http.StatusCreated, status)

	status, _ = postJSON(t, env.server.URL+"/api/donations", map[string]string{
		"amount": "25",
		"method": "cheque",
	})
	assert.Equal(t, http.StatusBadRequest, status)
}

// ==========================
// Accounts
// ==========================

func TestAuthFlowOverHTTP(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	status, body := postJSON(t, env.server.URL+"/api/auth/signup", map[string]string{
		"name":     "Miatta Kollie",
		"email":    "miatta@example.lr",
		"password": "secret",
	})
	require.Equal(t, http.StatusCreated, status)

	var user models.User
	require.NoError(t, json.Unmarshal([]byte(body), &user))
	assert.NotEmpty(t, user.ID)

	status, body = getBody(t, env.server.URL+"/api/auth/me")
	require.Equal(t, http.StatusOK, status)
	var current models.User
	require.NoError(t, json.Unmarshal([]byte(body), &current))
	assert.Equal(t, user.ID, current.ID)

	status, _ = postJSON(t, env.server.URL+"/api/auth/logout", map[string]string{})
	require.Equal(t, http.StatusOK, status)

	status, body = getBody(t, env.server.URL+"/api/auth/me")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "null", strings.TrimSpace(body))
}

func TestSignupDuplicateOverHTTP(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	payload := map[string]string{"name": "A", "email": "a@b.lr", "password": "x"}
	status, _ := postJSON(t, env.server.URL+"/api/auth/signup", payload)
	require.Equal(t, http.StatusCreated, status)

	status, _ = postJSON(t, env.server.URL+"/api/auth/signup", payload)
	assert.Equal(t, http.StatusConflict, status)
}

// ==========================
// Operational
// ==========================

func TestHealthz(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	status, body := getBody(t, env.server.URL+"/healthz")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, `"status":"ok"`)
}

func TestMetricsExposed(t *testing.T) {
	env := setupEnv(t, &fakeStream{}, nil)

	status, body := getBody(t, env.server.URL+"/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, body, "go_goroutines")
}
