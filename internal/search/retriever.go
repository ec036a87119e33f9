package search

import (
	"context"
	"fmt"

	"ai-media-search/pkg/logger"
	"ai-media-search/pkg/metrics"
)

// RetrievalOptions tag-id 过滤族的召回参数
type RetrievalOptions struct {
	MaxResults int
	PageSize   int
	MinRating  int
	MinVotes   int
	SortBy     string
}

func (o RetrievalOptions) withDefaults() RetrievalOptions {
	if o.MaxResults <= 0 {
		o.MaxResults = 200
	}
	if o.PageSize <= 0 {
		o.PageSize = 50
	}
	if o.SortBy == "" {
		o.SortBy = "rating"
	}
	return o
}

// VNRetriever AND 过滤的分页召回（tag-id 族）。
// 过滤条件为：标签 OR 组合 ∧ 最低评分 ∧ 最低票数。
type VNRetriever struct {
	catalog VNCatalog
	opts    RetrievalOptions
}

// NewVNRetriever 创建 VNDB 召回器
func NewVNRetriever(catalog VNCatalog, opts RetrievalOptions) *VNRetriever {
	return &VNRetriever{catalog: catalog, opts: opts.withDefaults()}
}

// Retrieve 按页累积结果，直到达到上限或某页未满（数据已尽）。
// 中途某页失败时返回已累积的部分结果；首页即失败则为空集。
// 返回的 error 仅用于降级记录，数据本身始终可用。
func (r *VNRetriever) Retrieve(ctx context.Context, tagIDs []string) ([]CatalogItem, error) {
	if len(tagIDs) == 0 {
		return []CatalogItem{}, nil
	}

	var records []VNRecord
	var pageErr error
	for page := 1; len(records) < r.opts.MaxResults; page++ {
		batch, err := r.catalog.SearchPage(ctx, VNQuery{
			TagIDs:    tagIDs,
			MinRating: r.opts.MinRating,
			MinVotes:  r.opts.MinVotes,
			SortBy:    r.opts.SortBy,
			Page:      page,
			PageSize:  r.opts.PageSize,
		})
		if err != nil {
			logger.Warn(ctx, "vn page fetch failed, returning accumulated results",
				"page", page, "accumulated", len(records), "error", err.Error())
			pageErr = fmt.Errorf("page %d: %w", page, err)
			break
		}
		if len(batch) == 0 {
			break
		}
		records = append(records, batch...)
		if len(batch) < r.opts.PageSize {
			break
		}
	}

	if len(records) > r.opts.MaxResults {
		records = records[:r.opts.MaxResults]
	}

	items := make([]CatalogItem, 0, len(records))
	for _, rec := range records {
		items = append(items, CatalogItem{
			ID:          rec.ID,
			Title:       rec.Title,
			AltTitle:    rec.AltTitle,
			Description: stripMarkup(rec.Description),
			Rating:      normalizeRating(rec.Rating),
			VoteCount:   rec.VoteCount,
			SourceURL:   "https://vndb.org/" + rec.ID,
		})
	}
	metrics.SearchCandidates.WithLabelValues("vndb").Observe(float64(len(items)))
	return items, pageErr
}

// MediaRetriever OR 标签并集召回（tag-name 族）。
// 上游 API 单次调用内才做 OR，跨标签并集由逐标签查询 + id 去重实现。
type MediaRetriever struct {
	catalog MediaCatalog
}

// NewMediaRetriever 创建 AniList 召回器
func NewMediaRetriever(catalog MediaCatalog) *MediaRetriever {
	return &MediaRetriever{catalog: catalog}
}

// Retrieve 逐标签查询并按 id 去重合并。零标签时返回空集
// （上游不接受空的 tag_in 过滤）。单标签查询失败记录降级后跳过。
func (r *MediaRetriever) Retrieve(ctx context.Context, mediaType MediaType, tags []string) ([]CatalogItem, error) {
	if len(tags) == 0 {
		return []CatalogItem{}, nil
	}

	merged := make(map[int]MediaRecord)
	order := make([]int, 0)
	var lastErr error
	for _, tag := range tags {
		records, err := r.catalog.MediaByTag(ctx, mediaType, tag)
		if err != nil {
			logger.Warn(ctx, "media tag query failed, tag skipped", "tag", tag, "error", err.Error())
			lastErr = fmt.Errorf("tag %q: %w", tag, err)
			continue
		}
		for _, rec := range records {
			if _, ok := merged[rec.ID]; !ok {
				merged[rec.ID] = rec
				order = append(order, rec.ID)
			}
		}
	}

	items := make([]CatalogItem, 0, len(order))
	for _, id := range order {
		rec := merged[id]
		title := rec.TitleRomaji
		if title == "" {
			title = rec.TitleEnglish
		}
		if title == "" {
			title = rec.TitleNative
		}
		if title == "" {
			title = "Untitled"
		}
		image := rec.CoverLarge
		if image == "" {
			image = rec.CoverMedium
		}
		items = append(items, CatalogItem{
			ID:          fmt.Sprintf("%d", rec.ID),
			Title:       title,
			AltTitle:    rec.TitleEnglish,
			Description: stripMarkup(rec.Description),
			Rating:      intRating(rec.AverageScore),
			VoteCount:   nil, // 该来源族不提供票数
			ImageURL:    image,
			SourceURL:   rec.SiteURL,
		})
	}
	metrics.SearchCandidates.WithLabelValues("anilist").Observe(float64(len(items)))
	return items, lastErr
}
