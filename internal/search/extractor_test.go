package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter 以固定输出或错误响应补全调用
type fakeCompleter struct {
	response string
	err      error
	calls    int
	prompts  []string
}

func (f *fakeCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	f.calls++
	f.prompts = append(f.prompts, req.Prompt)
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestExtractVNDBTags(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     []string
	}{
		{
			name:     "clean array",
			response: `["School Life", "Redemption", "Student Heroine"]`,
			want:     []string{"School Life", "Redemption", "Student Heroine"},
		},
		{
			name:     "array wrapped in explanation",
			response: "Sure! Here are the tags:\n[\"Redemption\", \"Coming of Age\"]\nHope this helps.",
			want:     []string{"Redemption", "Coming of Age"},
		},
		{
			name:     "newlines inside array",
			response: "[\"School Life\",\n\"Redemption\"]",
			want:     []string{"School Life", "Redemption"},
		},
		{
			name:     "no array at all",
			response: "I cannot extract tags from this description.",
			want:     []string{},
		},
		{
			name:     "malformed json",
			response: `["School Life", "Redemption"`,
			want:     []string{},
		},
		{
			name:     "array of objects",
			response: `[{"tag": "School Life"}]`,
			want:     []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &fakeCompleter{response: tt.response}
			e := NewTagExtractor(llm, nil, 5)

			tags, err := e.ExtractVNDBTags(context.Background(), "I like redemption stories")
			require.NoError(t, err)
			assert.Equal(t, tt.want, tags)
		})
	}
}

func TestExtractVNDBTagsEmptyInput(t *testing.T) {
	llm := &fakeCompleter{response: `["ignored"]`}
	e := NewTagExtractor(llm, nil, 5)

	tags, err := e.ExtractVNDBTags(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, tags)
	assert.Zero(t, llm.calls, "empty input must not invoke the model")
}

func TestExtractVNDBTagsTransportFailure(t *testing.T) {
	llm := &fakeCompleter{err: errors.New("connection refused")}
	e := NewTagExtractor(llm, nil, 5)

	tags, err := e.ExtractVNDBTags(context.Background(), "some text")
	assert.Error(t, err)
	assert.Empty(t, tags)
}

func TestExtractMediaTagsVocabularyFilter(t *testing.T) {
	vocab := NewVocabulary(func(context.Context) ([]string, error) {
		return []string{"School Life", "Time Travel", "Isekai"}, nil
	})
	require.NoError(t, vocab.Load(context.Background()))

	llm := &fakeCompleter{response: `{"tags": ["School Life", "Made Up Tag", "Time Travel"]}`}
	e := NewTagExtractor(llm, vocab, 5)

	tags, err := e.ExtractMediaTags(context.Background(), "time travel school story", MediaTypeAnime)
	require.NoError(t, err)
	assert.Equal(t, []string{"School Life", "Time Travel"}, tags)
}

func TestExtractMediaTagsTruncation(t *testing.T) {
	vocab := NewVocabulary(func(context.Context) ([]string, error) {
		return []string{"A", "B", "C", "D", "E", "F", "G"}, nil
	})
	require.NoError(t, vocab.Load(context.Background()))

	llm := &fakeCompleter{response: `{"tags": ["A", "B", "C", "D", "E", "F", "G"]}`}
	e := NewTagExtractor(llm, vocab, 5)

	tags, err := e.ExtractMediaTags(context.Background(), "everything", MediaTypeManga)
	require.NoError(t, err)
	assert.Len(t, tags, 5)
}

func TestExtractMediaTagsEmptyVocabularyDegradesToUnfiltered(t *testing.T) {
	vocab := NewVocabulary(func(context.Context) ([]string, error) {
		return nil, errors.New("anilist unavailable")
	})
	_ = vocab.Load(context.Background())

	llm := &fakeCompleter{response: `{"tags": ["Anything Goes"]}`}
	e := NewTagExtractor(llm, vocab, 5)

	tags, err := e.ExtractMediaTags(context.Background(), "anything", MediaTypeAnime)
	require.NoError(t, err)
	assert.Equal(t, []string{"Anything Goes"}, tags)
}

func TestExtractMediaTagsMalformedOutput(t *testing.T) {
	llm := &fakeCompleter{response: "not json at all"}
	e := NewTagExtractor(llm, nil, 5)

	tags, err := e.ExtractMediaTags(context.Background(), "text", MediaTypeAnime)
	require.NoError(t, err)
	assert.Empty(t, tags)
}
