// Package anilist 提供 AniList GraphQL API 客户端
package anilist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ai-media-search/internal/config"
	"ai-media-search/internal/search"
)

const defaultEndpoint = "https://graphql.anilist.co"

// mediaQuery 按单标签检索一页媒体，按热度降序
const mediaQuery = `
query ($type: MediaType, $tags: [String], $perPage: Int) {
  Page(page: 1, perPage: $perPage) {
    media(
      type: $type,
      tag_in: $tags,
      sort: POPULARITY_DESC
    ) {
      id
      title { romaji english native }
      description
      averageScore
      siteUrl
      coverImage { large medium }
    }
  }
}`

const genreQuery = `query { GenreCollection }`

const tagQuery = `query { MediaTagCollection { name } }`

// Client AniList GraphQL 客户端，实现 search.MediaCatalog
type Client struct {
	endpoint   string
	perPage    int
	httpClient *http.Client
}

// NewClient 创建 AniList 客户端
func NewClient(cfg *config.AniListConfig) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	perPage := cfg.PerPage
	if perPage <= 0 {
		perPage = 50
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		perPage:  perPage,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphqlError struct {
	Message string `json:"message"`
}

type mediaTitle struct {
	Romaji  string `json:"romaji"`
	English string `json:"english"`
	Native  string `json:"native"`
}

type coverImage struct {
	Large  string `json:"large"`
	Medium string `json:"medium"`
}

type media struct {
	ID           int        `json:"id"`
	Title        mediaTitle `json:"title"`
	Description  string     `json:"description"`
	AverageScore *int       `json:"averageScore"`
	SiteURL      string     `json:"siteUrl"`
	CoverImage   coverImage `json:"coverImage"`
}

// MediaByTag 按单个标签名检索一页媒体记录
func (c *Client) MediaByTag(ctx context.Context, mediaType search.MediaType, tag string) ([]search.MediaRecord, error) {
	var resp struct {
		Data struct {
			Page struct {
				Media []media `json:"media"`
			} `json:"Page"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}

	err := c.post(ctx, graphqlRequest{
		Query: mediaQuery,
		Variables: map[string]any{
			"type":    string(mediaType),
			"tags":    []string{tag},
			"perPage": c.perPage,
		},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		return nil, fmt.Errorf("anilist query error: %s", resp.Errors[0].Message)
	}

	records := make([]search.MediaRecord, 0, len(resp.Data.Page.Media))
	for _, m := range resp.Data.Page.Media {
		records = append(records, search.MediaRecord{
			ID:           m.ID,
			TitleRomaji:  m.Title.Romaji,
			TitleEnglish: m.Title.English,
			TitleNative:  m.Title.Native,
			Description:  m.Description,
			AverageScore: m.AverageScore,
			SiteURL:      m.SiteURL,
			CoverLarge:   m.CoverImage.Large,
			CoverMedium:  m.CoverImage.Medium,
		})
	}
	return records, nil
}

// TagVocabulary 拉取官方 genre 与 tag 名称合并为一份词表
func (c *Client) TagVocabulary(ctx context.Context) ([]string, error) {
	var genreResp struct {
		Data struct {
			GenreCollection []string `json:"GenreCollection"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}
	if err := c.post(ctx, graphqlRequest{Query: genreQuery}, &genreResp); err != nil {
		return nil, err
	}
	if len(genreResp.Errors) > 0 {
		return nil, fmt.Errorf("anilist genre query error: %s", genreResp.Errors[0].Message)
	}

	var tagResp struct {
		Data struct {
			MediaTagCollection []struct {
				Name string `json:"name"`
			} `json:"MediaTagCollection"`
		} `json:"data"`
		Errors []graphqlError `json:"errors"`
	}
	if err := c.post(ctx, graphqlRequest{Query: tagQuery}, &tagResp); err != nil {
		return nil, err
	}
	if len(tagResp.Errors) > 0 {
		return nil, fmt.Errorf("anilist tag query error: %s", tagResp.Errors[0].Message)
	}

	names := make([]string, 0, len(genreResp.Data.GenreCollection)+len(tagResp.Data.MediaTagCollection))
	names = append(names, genreResp.Data.GenreCollection...)
	for _, t := range tagResp.Data.MediaTagCollection {
		names = append(names, t.Name)
	}
	return names, nil
}

// post 发送 GraphQL 请求并解析响应
func (c *Client) post(ctx context.Context, body graphqlRequest, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal anilist request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create anilist request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("anilist request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read anilist response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("anilist api error (status %d): %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse anilist response: %w", err)
	}
	return nil
}
