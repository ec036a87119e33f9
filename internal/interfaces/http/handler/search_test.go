package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-media-search/internal/search"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubCompleter struct {
	response string
}

func (s *stubCompleter) Complete(context.Context, search.CompletionRequest) (string, error) {
	return s.response, nil
}

type stubVNCatalog struct {
	tagIDs map[string]string
	pages  [][]search.VNRecord
}

func (s *stubVNCatalog) SearchTagID(_ context.Context, name string) (string, bool, error) {
	id, ok := s.tagIDs[name]
	return id, ok, nil
}

func (s *stubVNCatalog) SearchPage(_ context.Context, q search.VNQuery) ([]search.VNRecord, error) {
	if q.Page > len(s.pages) {
		return nil, nil
	}
	return s.pages[q.Page-1], nil
}

type stubMediaCatalog struct{}

func (stubMediaCatalog) MediaByTag(context.Context, search.MediaType, string) ([]search.MediaRecord, error) {
	return nil, nil
}

func (stubMediaCatalog) TagVocabulary(context.Context) ([]string, error) {
	return nil, nil
}

type stubScorer struct {
	score float64
}

func (s *stubScorer) Score(context.Context, string, string) float64 { return s.score }

func newTestHandler(llmResponse string, vn *stubVNCatalog) *SearchHandler {
	llm := &stubCompleter{response: llmResponse}
	svc := search.NewService(
		search.NewTagExtractor(llm, nil, 5),
		search.NewTagResolver(vn, 5),
		search.NewVNRetriever(vn, search.RetrievalOptions{}),
		search.NewMediaRetriever(stubMediaCatalog{}),
		search.NewSemanticFilter(&stubScorer{score: 0.9}, search.FilterOptions{BatchSize: 5}),
	)
	return NewSearchHandler(svc, func() bool { return true })
}

func newRouter(h *SearchHandler) *gin.Engine {
	r := gin.New()
	r.POST("/search", h.Search)
	r.POST("/search-stream", h.SearchStream)
	return r
}

func doPost(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func float64Ptr(v float64) *float64 { return &v }

func TestSearchResponseShape(t *testing.T) {
	vn := &stubVNCatalog{
		tagIDs: map[string]string{"Redemption": "g596"},
		pages: [][]search.VNRecord{{
			{ID: "v17", Title: "Ever17", Description: "An underwater theme park traps its visitors.", Rating: float64Ptr(85)},
		}},
	}
	h := newTestHandler(`["Redemption"]`, vn)
	w := doPost(t, newRouter(h), "/search", `{"text":"redemption story","type":"GALGAME"}`)

	require.Equal(t, http.StatusOK, w.Code)

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	assert.Equal(t, "redemption story", resp["input"])
	assert.Equal(t, "GALGAME", resp["type"])
	assert.Equal(t, []any{"Redemption"}, resp["aiTags"])
	assert.Equal(t, []any{"g596"}, resp["tagIds"])

	status := resp["status"].(map[string]any)
	assert.Equal(t, "VNDB", status["source"])
	assert.NotContains(t, status, "degraded")

	results := resp["results"].([]any)
	require.Len(t, results, 1)
	first := results[0].(map[string]any)
	assert.Equal(t, "v17", first["id"])
	assert.Equal(t, "https://vndb.org/v17", first["url"])
	assert.Equal(t, 8.5, first["rating"])

	debug := resp["debug"].(map[string]any)
	assert.Equal(t, true, debug["apiKeyLoaded"])
}

func TestSearchLowercaseTypeAccepted(t *testing.T) {
	h := newTestHandler(`[]`, &stubVNCatalog{})
	w := doPost(t, newRouter(h), "/search", `{"text":"x","type":"galgame"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestSearchMissingType(t *testing.T) {
	h := newTestHandler(`[]`, &stubVNCatalog{})
	w := doPost(t, newRouter(h), "/search", `{"text":"x"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, resp, "error")
}

func TestSearchUnknownType(t *testing.T) {
	h := newTestHandler(`[]`, &stubVNCatalog{})
	w := doPost(t, newRouter(h), "/search", `{"text":"x","type":"MOVIE"}`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "unknown media type", resp["error"])
	assert.Equal(t, "MOVIE", resp["details"])
}

func TestSearchMalformedBody(t *testing.T) {
	h := newTestHandler(`[]`, &stubVNCatalog{})
	w := doPost(t, newRouter(h), "/search", `{not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSearchStreamNDJSON(t *testing.T) {
	records := make([]search.VNRecord, 12)
	for i := range records {
		records[i] = search.VNRecord{
			ID:          "v" + string(rune('a'+i)),
			Title:       "Title",
			Description: "A sufficiently long candidate description.",
		}
	}
	vn := &stubVNCatalog{
		tagIDs: map[string]string{"Redemption": "g596"},
		pages:  [][]search.VNRecord{records},
	}
	h := newTestHandler(`["Redemption"]`, vn)
	w := doPost(t, newRouter(h), "/search-stream", `{"text":"redemption","type":"GALGAME"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))

	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 4, "3 progress records then one end record")

	var last struct {
		Type string `json:"type"`
	}
	for i, line := range lines[:3] {
		var ev struct {
			Type     string           `json:"type"`
			Done     int              `json:"done"`
			Total    int              `json:"total"`
			Progress int              `json:"progress"`
			Results  []map[string]any `json:"results"`
		}
		require.NoError(t, json.Unmarshal([]byte(line), &ev), "line %d", i)
		assert.Equal(t, "progress", ev.Type)
		assert.Equal(t, 12, ev.Total)
		assert.NotNil(t, ev.Results)
	}
	require.NoError(t, json.Unmarshal([]byte(lines[3]), &last))
	assert.Equal(t, "end", last.Type)
}

func TestSearchStreamEmptyPipeline(t *testing.T) {
	h := newTestHandler(`[]`, &stubVNCatalog{})
	w := doPost(t, newRouter(h), "/search-stream", `{"text":"","type":"GALGAME"}`)

	require.Equal(t, http.StatusOK, w.Code)
	lines := strings.Split(strings.TrimSpace(w.Body.String()), "\n")
	require.Len(t, lines, 1, "no candidates means the end record only")
	assert.JSONEq(t, `{"type":"end"}`, lines[0])
}

func TestSearchStreamUnknownType(t *testing.T) {
	h := newTestHandler(`[]`, &stubVNCatalog{})
	w := doPost(t, newRouter(h), "/search-stream", `{"text":"x","type":"PODCAST"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthReportsVocabularySize(t *testing.T) {
	vocab := search.NewVocabulary(func(context.Context) ([]string, error) {
		return []string{"Action", "Drama"}, nil
	})
	require.NoError(t, vocab.Load(context.Background()))

	hh := NewHealthHandler("1.2.3", vocab)
	r := gin.New()
	r.GET("/health", hh.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(200), resp["code"])

	data := resp["data"].(map[string]any)
	assert.Equal(t, "ok", data["status"])
	assert.Equal(t, "1.2.3", data["version"])
	assert.Equal(t, float64(2), data["vocabulary_size"])
}
