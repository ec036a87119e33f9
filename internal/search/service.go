package search

import (
	"context"
	"time"

	"ai-media-search/pkg/errors"
	"ai-media-search/pkg/logger"
	"ai-media-search/pkg/metrics"
	"ai-media-search/pkg/tracer"
)

// Service 按媒体类型选择来源管线并编排各阶段。
// GALGAME 走 tag-id 过滤族（抽取→解析→AND 分页召回）；
// ANIME/MANGA 走 tag-name 过滤族（词表约束抽取→OR 并集召回，
// 标签名直接作为过滤值，无独立解析步骤）。
type Service struct {
	extractor      *TagExtractor
	resolver       *TagResolver
	vnRetriever    *VNRetriever
	mediaRetriever *MediaRetriever
	filter         *SemanticFilter
}

// NewService 创建检索编排服务
func NewService(
	extractor *TagExtractor,
	resolver *TagResolver,
	vnRetriever *VNRetriever,
	mediaRetriever *MediaRetriever,
	filter *SemanticFilter,
) *Service {
	return &Service{
		extractor:      extractor,
		resolver:       resolver,
		vnRetriever:    vnRetriever,
		mediaRetriever: mediaRetriever,
		filter:         filter,
	}
}

// Retrieve 运行召回管线（不含语义过滤），返回归一化候选集。
// 各阶段失败就地吸收为降级记录，绝不中断整条管线。
func (s *Service) Retrieve(ctx context.Context, req Request) (*Outcome, error) {
	ctx, span := tracer.Start(ctx, "search.retrieve")
	defer span.End()
	start := time.Now()

	out := &Outcome{AITags: []string{}, TagIDs: []string{}, Items: []CatalogItem{}}

	switch req.Type {
	case MediaTypeGalgame:
		out.Source = "VNDB"
		ctx = logger.WithContext(ctx, logger.SourceKey, out.Source)

		tags, err := s.extractor.ExtractVNDBTags(ctx, req.Text)
		out.MarkDegraded("tag_extract", err)
		out.AITags = tags

		out.TagIDs = s.resolver.Resolve(ctx, tags)

		items, err := s.vnRetriever.Retrieve(ctx, out.TagIDs)
		out.MarkDegraded("retrieval", err)
		out.Items = items

	case MediaTypeAnime, MediaTypeManga:
		out.Source = "AniList-" + string(req.Type)
		ctx = logger.WithContext(ctx, logger.SourceKey, out.Source)

		tags, err := s.extractor.ExtractMediaTags(ctx, req.Text, req.Type)
		out.MarkDegraded("tag_extract", err)
		out.AITags = tags

		items, err := s.mediaRetriever.Retrieve(ctx, req.Type, tags)
		out.MarkDegraded("retrieval", err)
		out.Items = items

	default:
		return nil, errors.New(errors.CodeUnknownMediaType, "unknown media type").WithDetail(string(req.Type))
	}

	status := "ok"
	if len(out.Degraded) > 0 {
		status = "degraded"
	}
	metrics.SearchTotal.WithLabelValues(string(req.Type), status).Inc()
	metrics.SearchDuration.WithLabelValues(string(req.Type)).Observe(time.Since(start).Seconds())
	logger.Info(ctx, "retrieval pipeline finished",
		"media_type", string(req.Type),
		"tags", len(out.AITags),
		"candidates", len(out.Items),
		"degraded", out.Degraded,
	)
	return out, nil
}

// Search 非流式检索：返回原始召回结果，不做语义过滤。
// 与流式端点的不对称是有意保留的两种管线深度。
func (s *Service) Search(ctx context.Context, req Request) (*Outcome, error) {
	return s.Retrieve(ctx, req)
}

// SearchStream 流式检索：召回后对候选集做流式语义过滤，
// 每批进度经 emit 回调推送给调用方。
func (s *Service) SearchStream(ctx context.Context, req Request, emit func(Progress) error) error {
	out, err := s.Retrieve(ctx, req)
	if err != nil {
		return err
	}
	return s.filter.FilterStream(ctx, req.Text, out.Items, emit)
}

// FilterBatch 对给定候选集运行批量语义过滤（供需要全量排序结果的调用方使用）
func (s *Service) FilterBatch(ctx context.Context, userText string, items []CatalogItem) ([]ScoredItem, error) {
	return s.filter.FilterBatch(ctx, userText, items)
}
