package knowledge

import (
	"context"
	"errors"
	"iter"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"askliberia/internal/common/logger"
	"askliberia/internal/models"
)

// ==========================
// Fake ports
// ==========================

// fakeStream replays a fixed chunk sequence, optionally ending in an error,
// and records the request it was opened with.
type fakeStream struct {
	chunks  []Chunk
	err     error
	lastGen *GenerateRequest
	lastCh  *ChatRequest
}

func (f *fakeStream) GenerateStream(_ context.Context, req GenerateRequest) iter.Seq2[Chunk, error] {
	f.lastGen = &req
	return f.seq()
}

func (f *fakeStream) ChatStream(_ context.Context, req ChatRequest) iter.Seq2[Chunk, error] {
	f.lastCh = &req
	return f.seq()
}

func (f *fakeStream) seq() iter.Seq2[Chunk, error] {
	return func(yield func(Chunk, error) bool) {
		for _, ch := range f.chunks {
			if !yield(ch, nil) {
				return
			}
		}
		if f.err != nil {
			yield(Chunk{}, f.err)
		}
	}
}

type fakeSpeech struct {
	audio    []byte
	err      error
	lastText string
}

func (f *fakeSpeech) Synthesize(_ context.Context, req SpeechRequest) ([]byte, error) {
	f.lastText = req.Text
	if f.err != nil {
		return nil, f.err
	}
	return f.audio, nil
}

func newTestService(t *testing.T, stream *fakeStream, speech *fakeSpeech) *Service {
	t.Helper()
	if speech == nil {
		speech = &fakeSpeech{}
	}
	return NewService(DefaultConfig(), stream, stream, speech, logger.NewTestLogger(t))
}

func testQuery() models.Query {
	return models.Query{
		Text:     "Who was the first president?",
		County:   models.AllCounties,
		Language: models.LanguageEnglish,
	}
}

// ==========================
// Streaming aggregation
// ==========================

func TestSearchSnapshotsArePrefixMonotonic(t *testing.T) {
	stream := &fakeStream{chunks: []Chunk{
		{Text: "Joseph "},
		{Text: "Jenkins "},
		{Text: "Roberts."},
	}}
	svc := newTestService(t, stream, nil)

	var snapshots []models.Snapshot
	final := svc.Search(context.Background(), testQuery(), func(s models.Snapshot) {
		snapshots = append(snapshots, s)
	})

	require.Len(t, snapshots, 3)
	for i := 1; i < len(snapshots); i++ {
		assert.True(t, strings.HasPrefix(snapshots[i].Text, snapshots[i-1].Text),
			"snapshot %d must extend snapshot %d", i, i-1)
		assert.Greater(t, len(snapshots[i].Text), len(snapshots[i-1].Text))
	}

	assert.True(t, final.Final)
	assert.Equal(t, "Joseph Jenkins Roberts.", final.Text)
	assert.Equal(t, snapshots[len(snapshots)-1].Text, final.Text)
}

func TestSearchFoldsCitationsAcrossChunks(t *testing.T) {
	stream := &fakeStream{chunks: []Chunk{
		{Text: "a", Citations: []models.Source{{Title: "One", URI: "https://example.lr/1"}}},
		{Text: "b", Citations: []models.Source{
			{Title: "Duplicate", URI: "https://example.lr/1"},
			{Title: "Two", URI: "https://example.lr/2"},
		}},
	}}
	svc := newTestService(t, stream, nil)

	final := svc.Search(context.Background(), testQuery(), nil)

	require.Len(t, final.Sources, 2)
	assert.Equal(t, "One", final.Sources[0].Title)
	assert.Equal(t, "https://example.lr/2", final.Sources[1].URI)
}

func TestSearchSourceCountNeverShrinks(t *testing.T) {
	stream := &fakeStream{chunks: []Chunk{
		{Citations: []models.Source{{Title: "One", URI: "https://example.lr/1"}}},
		{Text: "text only"},
		{Citations: []models.Source{{Title: "Two", URI: "https://example.lr/2"}}},
	}}
	svc := newTestService(t, stream, nil)

	var counts []int
	svc.Search(context.Background(), testQuery(), func(s models.Snapshot) {
		counts = append(counts, len(s.Sources))
	})

	require.Len(t, counts, 3)
	assert.Equal(t, []int{1, 1, 2}, counts)
}

func TestSearchErrorMidStreamResolvesWithFallback(t *testing.T) {
	stream := &fakeStream{
		chunks: []Chunk{
			{Text: "partial ", Citations: []models.Source{{Title: "S", URI: "https://example.lr/s"}}},
			{Text: "answer"},
		},
		err: errors.New("connection reset"),
	}
	svc := newTestService(t, stream, nil)

	updates := 0
	final := svc.Search(context.Background(), testQuery(), func(models.Snapshot) {
		updates++
	})

	assert.Equal(t, 2, updates, "chunks before the failure still stream")
	assert.True(t, final.Final)
	assert.Equal(t, FallbackSearchError, final.Text)
	assert.Empty(t, final.Sources)
}

func TestSearchEmptyStreamResolvesWithPlaceholder(t *testing.T) {
	svc := newTestService(t, &fakeStream{}, nil)

	final := svc.Search(context.Background(), testQuery(), nil)

	assert.True(t, final.Final)
	assert.Equal(t, FallbackNoInformation, final.Text)
	assert.Empty(t, final.Sources)
}

func TestSearchCitationsOnlyStreamResolvesWithPlaceholder(t *testing.T) {
	stream := &fakeStream{chunks: []Chunk{
		{Citations: []models.Source{{Title: "S", URI: "https://example.lr/s"}}},
	}}
	svc := newTestService(t, stream, nil)

	final := svc.Search(context.Background(), testQuery(), nil)

	assert.Equal(t, FallbackNoInformation, final.Text)
	assert.Empty(t, final.Sources)
}

func TestSearchComposesPromptFromQuery(t *testing.T) {
	stream := &fakeStream{chunks: []Chunk{{Text: "x"}}}
	svc := newTestService(t, stream, nil)

	query := models.Query{Text: "Best waterfalls?", County: "Bong", Language: models.LanguageKoloqua}
	svc.Search(context.Background(), query, nil)

	require.NotNil(t, stream.lastGen)
	assert.Contains(t, stream.lastGen.Prompt, "Best waterfalls?")
	assert.Contains(t, stream.lastGen.Prompt, "Bong County, Liberia")
	assert.Contains(t, stream.lastGen.Instructions, "Koloqua")
	assert.InDelta(t, 0.3, stream.lastGen.Temperature, 1e-9)
}

func TestSearchNilCallbackIsAllowed(t *testing.T) {
	stream := &fakeStream{chunks: []Chunk{{Text: "hello"}}}
	svc := newTestService(t, stream, nil)

	final := svc.Search(context.Background(), testQuery(), nil)

	assert.Equal(t, "hello", final.Text)
}
