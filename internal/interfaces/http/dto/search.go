// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"ai-media-search/internal/search"
)

// SearchRequest 检索请求体
type SearchRequest struct {
	Text string `json:"text"`
	Type string `json:"type" binding:"required"`
}

// SearchStatus 管线来源与降级状态
type SearchStatus struct {
	Source   string   `json:"source"`
	Degraded []string `json:"degraded,omitempty"`
}

// SearchDebug 调试信息
type SearchDebug struct {
	APIKeyLoaded bool `json:"apiKeyLoaded"`
}

// SearchResponse 非流式检索响应
type SearchResponse struct {
	Input   string               `json:"input"`
	Type    string               `json:"type"`
	AITags  []string             `json:"aiTags,omitempty"`
	TagIDs  []string             `json:"tagIds,omitempty"`
	Status  SearchStatus         `json:"status"`
	Results []search.CatalogItem `json:"results"`
	Debug   SearchDebug          `json:"debug"`
}

// ProgressEvent 流式响应的进度记录，每批一条
type ProgressEvent struct {
	Type     string              `json:"type"`
	Done     int                 `json:"done"`
	Total    int                 `json:"total"`
	Progress int                 `json:"progress"`
	Results  []search.ScoredItem `json:"results"`
}

// EndEvent 流结束哨兵记录
type EndEvent struct {
	Type string `json:"type"`
}

// ErrorEvent 终止性错误记录（替代 end 哨兵）
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// NewProgressEvent 将过滤器进度转换为流式记录
func NewProgressEvent(p search.Progress) ProgressEvent {
	results := p.Results
	if results == nil {
		results = []search.ScoredItem{}
	}
	return ProgressEvent{
		Type:     "progress",
		Done:     p.Done,
		Total:    p.Total,
		Progress: p.Percent,
		Results:  results,
	}
}

// NewEndEvent 流结束哨兵
func NewEndEvent() EndEvent {
	return EndEvent{Type: "end"}
}

// NewErrorEvent 终止性错误记录
func NewErrorEvent(msg string) ErrorEvent {
	return ErrorEvent{Type: "error", Message: msg}
}
