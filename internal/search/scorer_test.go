package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimilarityScore(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     float64
	}{
		{"plain number", "0.82", 0.82},
		{"whitespace around number", "  0.5\n", 0.5},
		{"zero", "0", 0},
		{"one", "1", 1},
		{"clamped above one", "7.5", 1},
		{"clamped below zero", "-0.3", 0},
		{"prose instead of number", "The similarity is high.", 0},
		{"empty response", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSimilarityScorer(&fakeCompleter{response: tt.response})
			got := s.Score(context.Background(), "user text", "some item description")
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestSimilarityScoreEmptyDescription(t *testing.T) {
	llm := &fakeCompleter{response: "0.9"}
	s := NewSimilarityScorer(llm)

	got := s.Score(context.Background(), "user text", "")
	assert.Zero(t, got)
	assert.Zero(t, llm.calls, "empty description must not invoke the model")
}

func TestSimilarityScoreTransportFailure(t *testing.T) {
	s := NewSimilarityScorer(&fakeCompleter{err: errors.New("timeout")})
	got := s.Score(context.Background(), "user text", "description")
	assert.Zero(t, got)
}
