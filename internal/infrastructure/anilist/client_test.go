package anilist

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai-media-search/internal/config"
	"ai-media-search/internal/search"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(&config.AniListConfig{Endpoint: srv.URL, PerPage: 50})
}

func TestMediaByTag(t *testing.T) {
	var gotBody struct {
		Query     string         `json:"query"`
		Variables map[string]any `json:"variables"`
	}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write([]byte(`{"data":{"Page":{"media":[
			{"id":9253,"title":{"romaji":"Steins;Gate","english":"Steins;Gate","native":"シュタインズ・ゲート"},
			 "description":"A microwave sends texts to the past.","averageScore":90,
			 "siteUrl":"https://anilist.co/anime/9253",
			 "coverImage":{"large":"https://img/l.png","medium":"https://img/m.png"}},
			{"id":2,"title":{"romaji":"","english":"","native":""},"description":"","averageScore":null,
			 "siteUrl":"","coverImage":{"large":"","medium":""}}
		]}}}`))
	})

	records, err := client.MediaByTag(context.Background(), search.MediaTypeAnime, "Time Travel")
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Contains(t, gotBody.Query, "tag_in: $tags")
	assert.Contains(t, gotBody.Query, "POPULARITY_DESC")
	assert.Equal(t, "ANIME", gotBody.Variables["type"])
	assert.Equal(t, []any{"Time Travel"}, gotBody.Variables["tags"])
	assert.Equal(t, float64(50), gotBody.Variables["perPage"])

	first := records[0]
	assert.Equal(t, 9253, first.ID)
	assert.Equal(t, "Steins;Gate", first.TitleRomaji)
	assert.Equal(t, "シュタインズ・ゲート", first.TitleNative)
	require.NotNil(t, first.AverageScore)
	assert.Equal(t, 90, *first.AverageScore)
	assert.Equal(t, "https://img/l.png", first.CoverLarge)

	assert.Nil(t, records[1].AverageScore)
}

func TestMediaByTagGraphQLError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"Invalid tag"}]}`))
	})

	_, err := client.MediaByTag(context.Background(), search.MediaTypeManga, "Bad Tag")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid tag")
}

func TestMediaByTagHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := client.MediaByTag(context.Background(), search.MediaTypeAnime, "Drama")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestTagVocabularyMergesGenresAndTags(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch {
		case strings.Contains(body.Query, "GenreCollection"):
			_, _ = w.Write([]byte(`{"data":{"GenreCollection":["Action","Drama"]}}`))
		case strings.Contains(body.Query, "MediaTagCollection"):
			_, _ = w.Write([]byte(`{"data":{"MediaTagCollection":[{"name":"Time Travel"},{"name":"Isekai"}]}}`))
		default:
			t.Errorf("unexpected query: %s", body.Query)
		}
	})

	names, err := client.TagVocabulary(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"Action", "Drama", "Time Travel", "Isekai"}, names)
}

func TestTagVocabularyGenreFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"errors":[{"message":"rate limited"}]}`))
	})

	_, err := client.TagVocabulary(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
