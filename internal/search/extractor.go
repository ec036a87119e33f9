package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ai-media-search/pkg/logger"
)

// TagExtractor 将用户描述文本交给补全模型，解析为标签名集合。
// 模型原始输出对管线而言是不可信输入：任何解析失败都归约为空集。
type TagExtractor struct {
	llm     Completer
	vocab   *Vocabulary
	maxTags int
}

// NewTagExtractor 创建标签抽取器。vocab 仅用于词表约束变体，可为 nil。
func NewTagExtractor(llm Completer, vocab *Vocabulary, maxTags int) *TagExtractor {
	if maxTags <= 0 {
		maxTags = 5
	}
	return &TagExtractor{llm: llm, vocab: vocab, maxTags: maxTags}
}

// ExtractVNDBTags 抽取 VNDB 标签名。空输入短路为空集，不触发模型调用。
// 传输失败返回 err 供上层记录降级；解析失败静默归约为空集。
func (e *TagExtractor) ExtractVNDBTags(ctx context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	prompt := fmt.Sprintf(`You are a visual novel (galgame) tag analyzer.
Based on the user's description, output the most relevant VNDB tag names in English.
Rules:
- Output ONLY a JSON array
- No explanation
- Short English tag names
- Avoid generic tags like "Drama", "Romance" unless absolutely necessary
- Prefer specific story or character traits
User description:
%q`, text)

	raw, err := e.llm.Complete(ctx, CompletionRequest{
		System:      "You strictly follow the output rules and only return JSON array of VNDB tags.",
		Prompt:      prompt,
		Temperature: 0.7,
		MaxTokens:   500,
		Purpose:     "tag_extract",
	})
	if err != nil {
		return []string{}, err
	}

	tags := decodeTagArray(extractJSONArray(raw))
	logger.Debug(ctx, "vndb tags extracted", "tags", tags)
	return tags, nil
}

// ExtractMediaTags 抽取 AniList 标签名（词表约束变体）。
// 词表尚未加载时降级为不过滤；结果截断到 maxTags。
func (e *TagExtractor) ExtractMediaTags(ctx context.Context, text string, mediaType MediaType) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return []string{}, nil
	}

	kind := "anime"
	if mediaType == MediaTypeManga {
		kind = "manga"
	}

	var vocabNames []string
	if e.vocab != nil {
		vocabNames = e.vocab.Names()
	}

	prompt := fmt.Sprintf(`You are an %s tag analyzer.

From the user description, extract suitable AniList tags only.

Rules:
- Output ONLY valid JSON
- No explanation
- Tags should be common AniList tags (from official %s)
- Keep concise (max %d tags)

JSON format:
{
  "tags": []
}

User description:
%q`, kind, strings.Join(vocabNames, ", "), e.maxTags, text)

	raw, err := e.llm.Complete(ctx, CompletionRequest{
		System:      "Only output JSON. No explanation.",
		Prompt:      prompt,
		Temperature: 0.4,
		MaxTokens:   300,
		Purpose:     "tag_extract",
	})
	if err != nil {
		return []string{}, err
	}

	var out struct {
		Tags []string `json:"tags"`
	}
	if jsonErr := json.Unmarshal([]byte(extractJSONObject(raw)), &out); jsonErr != nil {
		return []string{}, nil
	}

	tags := make([]string, 0, len(out.Tags))
	for _, t := range out.Tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		// 词表为空时不做过滤（加载未完成或失败的降级路径）
		if e.vocab != nil && !e.vocab.Empty() && !e.vocab.Contains(t) {
			continue
		}
		tags = append(tags, t)
		if len(tags) == e.maxTags {
			break
		}
	}

	logger.Debug(ctx, "media tags extracted", "media_type", string(mediaType), "tags", tags)
	return tags, nil
}
