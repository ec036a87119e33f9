// Package search 实现多阶段媒体检索管线：
// 文本 → AI 标签抽取 → 标签解析 → 目录召回 → 归一化 → 语义过滤。
package search

import (
	"strings"

	"ai-media-search/pkg/errors"
)

// MediaType 媒体类型，决定走哪条检索管线
type MediaType string

const (
	MediaTypeGalgame MediaType = "GALGAME"
	MediaTypeAnime   MediaType = "ANIME"
	MediaTypeManga   MediaType = "MANGA"
)

// ParseMediaType 解析并校验媒体类型
func ParseMediaType(s string) (MediaType, error) {
	switch MediaType(strings.ToUpper(strings.TrimSpace(s))) {
	case MediaTypeGalgame:
		return MediaTypeGalgame, nil
	case MediaTypeAnime:
		return MediaTypeAnime, nil
	case MediaTypeManga:
		return MediaTypeManga, nil
	default:
		return "", errors.New(errors.CodeUnknownMediaType, "unknown media type").WithDetail(s)
	}
}

// Request 一次检索请求。Text 允许为空（管线短路为空标签集）。
type Request struct {
	Text string
	Type MediaType
}

// CatalogItem 归一化后的候选条目。ID 与 Title 恒存在，
// 其余字段依来源可空；Rating 缺失时为 nil，绝不为 0。
type CatalogItem struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	AltTitle    string   `json:"alttitle"`
	Description string   `json:"description"`
	Rating      *float64 `json:"rating"`
	VoteCount   *int     `json:"votecount"`
	ImageURL    string   `json:"image,omitempty"`
	SourceURL   string   `json:"url"`
}

// ScoredItem 附加了语义相似度的候选条目
type ScoredItem struct {
	CatalogItem
	Similarity float64 `json:"similarity"`
}

// Progress 流式语义过滤的单批进度
type Progress struct {
	Done    int          `json:"done"`
	Total   int          `json:"total"`
	Percent int          `json:"progress"`
	Results []ScoredItem `json:"results"`
}

// Outcome 一次管线运行的聚合产物。
// Degraded 记录各阶段“静默降级”的原因，使调用方（和测试）
// 能区分“确实没有结果”与“上游失败后的空结果”。
type Outcome struct {
	Source   string
	AITags   []string
	TagIDs   []string
	Items    []CatalogItem
	Degraded []string
}

// MarkDegraded 记录一次阶段降级
func (o *Outcome) MarkDegraded(stage string, err error) {
	if err == nil {
		return
	}
	o.Degraded = append(o.Degraded, stage+": "+err.Error())
}
