package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"ai-media-search/pkg/logger"
)

// Scorer 语义相似度评分的最小依赖，便于在测试中替换
type Scorer interface {
	Score(ctx context.Context, userText, description string) float64
}

// SimilarityScorer 让补全模型对用户文本与候选描述的语义接近度打分。
// 任何非数值或畸形输出都归约为 0，不向上抛错。
type SimilarityScorer struct {
	llm Completer
}

// NewSimilarityScorer 创建相似度评分器
func NewSimilarityScorer(llm Completer) *SimilarityScorer {
	return &SimilarityScorer{llm: llm}
}

// Score 返回 [0,1] 区间的相似度。空描述直接短路为 0，不触发模型调用。
func (s *SimilarityScorer) Score(ctx context.Context, userText, description string) float64 {
	if description == "" {
		return 0
	}

	prompt := fmt.Sprintf(`You are a semantic similarity evaluator.

Compare the following two texts and output a similarity score between 0 and 1.

Rules:
- Output ONLY a number between 0 and 1
- No explanation

User text:
%q

Item description:
%q`, userText, description)

	raw, err := s.llm.Complete(ctx, CompletionRequest{
		System:      "Only output a number between 0 and 1.",
		Prompt:      prompt,
		Temperature: 0,
		MaxTokens:   20,
		Purpose:     "similarity",
	})
	if err != nil {
		logger.Warn(ctx, "similarity call failed, scoring 0", "error", err.Error())
		return 0
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
