// Package vndb 提供 VNDB kana API 客户端
package vndb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ai-media-search/internal/config"
	"ai-media-search/internal/search"
)

const defaultBaseURL = "https://api.vndb.org/kana"

// Client VNDB kana API 客户端，实现 search.VNCatalog
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建 VNDB 客户端
func NewClient(cfg *config.VNDBConfig) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// tagRequest /tag 端点请求体。filters 为 kana API 的嵌套数组过滤表达式。
type tagRequest struct {
	Filters []any  `json:"filters"`
	Fields  string `json:"fields"`
	Results int    `json:"results"`
	Sort    string `json:"sort"`
}

type tagResponse struct {
	Results []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"results"`
}

// SearchTagID 按名称查询最匹配的标签 id（results=1，按 searchrank 排序）
func (c *Client) SearchTagID(ctx context.Context, name string) (string, bool, error) {
	req := tagRequest{
		Filters: []any{"and", []any{"search", "=", name}},
		Fields:  "id,name",
		Results: 1,
		Sort:    "searchrank",
	}

	var resp tagResponse
	if err := c.post(ctx, "/tag", req, &resp); err != nil {
		return "", false, err
	}
	if len(resp.Results) == 0 {
		return "", false, nil
	}
	return resp.Results[0].ID, true, nil
}

// vnRequest /vn 端点请求体
type vnRequest struct {
	Filters []any  `json:"filters"`
	Fields  string `json:"fields"`
	Sort    string `json:"sort"`
	Reverse bool   `json:"reverse"`
	Results int    `json:"results"`
	Page    int    `json:"page"`
}

type vnResponse struct {
	Results []struct {
		ID          string   `json:"id"`
		Title       string   `json:"title"`
		AltTitle    string   `json:"alttitle"`
		Description string   `json:"description"`
		Rating      *float64 `json:"rating"`
		VoteCount   *int     `json:"votecount"`
	} `json:"results"`
}

// SearchPage 返回一页过滤后的 VN 记录。
// 过滤表达式：标签 OR 组合 ∧ 最低评分 ∧ 最低票数。
func (c *Client) SearchPage(ctx context.Context, q search.VNQuery) ([]search.VNRecord, error) {
	var tagFilter any
	if len(q.TagIDs) == 1 {
		tagFilter = []any{"tag", "=", q.TagIDs[0]}
	} else {
		or := []any{"or"}
		for _, id := range q.TagIDs {
			or = append(or, []any{"tag", "=", id})
		}
		tagFilter = or
	}

	req := vnRequest{
		Filters: []any{
			"and",
			tagFilter,
			[]any{"rating", ">=", q.MinRating},
			[]any{"votecount", ">=", q.MinVotes},
		},
		Fields:  "id,title,alttitle,description,rating,votecount",
		Sort:    q.SortBy,
		Reverse: true,
		Results: q.PageSize,
		Page:    q.Page,
	}

	var resp vnResponse
	if err := c.post(ctx, "/vn", req, &resp); err != nil {
		return nil, err
	}

	records := make([]search.VNRecord, 0, len(resp.Results))
	for _, r := range resp.Results {
		records = append(records, search.VNRecord{
			ID:          r.ID,
			Title:       r.Title,
			AltTitle:    r.AltTitle,
			Description: r.Description,
			Rating:      r.Rating,
			VoteCount:   r.VoteCount,
		})
	}
	return records, nil
}

// post 发送 JSON 请求并解析响应
func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal vndb request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create vndb request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("vndb request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read vndb response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("vndb api error (status %d): %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse vndb response: %w", err)
	}
	return nil
}
