package search

import (
	"context"
	"math"
	"sort"

	"golang.org/x/sync/errgroup"

	"ai-media-search/pkg/metrics"
)

// FilterOptions 语义过滤调优参数
type FilterOptions struct {
	MinScore      float64
	MinDescLength int
	TopN          int
	BatchSize     int
	MaxResults    int
}

func (o FilterOptions) withDefaults() FilterOptions {
	if o.MinScore <= 0 {
		o.MinScore = 0.35
	}
	if o.MinDescLength <= 0 {
		o.MinDescLength = 20
	}
	if o.TopN <= 0 {
		o.TopN = 50
	}
	if o.BatchSize <= 0 {
		o.BatchSize = 5
	}
	if o.MaxResults <= 0 {
		o.MaxResults = 20
	}
	return o
}

// SemanticFilter 对候选集做分批、并发受限的语义评分。
// 批内评分并发执行，批间严格串行；批内结果按输入顺序重组后再过滤。
type SemanticFilter struct {
	scorer Scorer
	opts   FilterOptions
}

// NewSemanticFilter 创建语义过滤器
func NewSemanticFilter(scorer Scorer, opts FilterOptions) *SemanticFilter {
	return &SemanticFilter{scorer: scorer, opts: opts.withDefaults()}
}

// FilterBatch 批量模式：过滤短描述候选，截断到 TopN 后评分，
// 留下得分 ≥ MinScore 的条目，按相似度降序返回至多 MaxResults 条。
func (f *SemanticFilter) FilterBatch(ctx context.Context, userText string, items []CatalogItem) ([]ScoredItem, error) {
	candidates := make([]CatalogItem, 0, len(items))
	for _, it := range items {
		if len(it.Description) >= f.opts.MinDescLength {
			candidates = append(candidates, it)
		}
	}
	// TopN 截断在评分前进行：以可能丢弃低排位候选为代价，约束单请求的模型调用量
	if len(candidates) > f.opts.TopN {
		candidates = candidates[:f.opts.TopN]
	}

	var kept []ScoredItem
	for start := 0; start < len(candidates); start += f.opts.BatchSize {
		end := min(start+f.opts.BatchSize, len(candidates))
		passed, err := f.scoreBatch(ctx, userText, candidates[start:end])
		if err != nil {
			return nil, err
		}
		kept = append(kept, passed...)
		metrics.SemanticBatchesTotal.WithLabelValues("batch").Inc()
	}
	if len(candidates) > 0 {
		metrics.SemanticPassRatio.WithLabelValues("batch").Observe(float64(len(kept)) / float64(len(candidates)))
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Similarity > kept[j].Similarity
	})
	if len(kept) > f.opts.MaxResults {
		kept = kept[:f.opts.MaxResults]
	}
	if kept == nil {
		kept = []ScoredItem{}
	}
	return kept, nil
}

// FilterStream 流式模式：无 TopN 截断，每批评分完成后通过 emit 推送
// 一条进度记录。批内条目保持输入顺序；跨批次的全局排序由调用方自理。
func (f *SemanticFilter) FilterStream(ctx context.Context, userText string, items []CatalogItem, emit func(Progress) error) error {
	candidates := make([]CatalogItem, 0, len(items))
	for _, it := range items {
		if it.Description != "" {
			candidates = append(candidates, it)
		}
	}

	total := len(candidates)
	done := 0
	for start := 0; start < total; start += f.opts.BatchSize {
		end := min(start+f.opts.BatchSize, total)
		passed, err := f.scoreBatch(ctx, userText, candidates[start:end])
		if err != nil {
			return err
		}
		done += len(passed)
		metrics.SemanticBatchesTotal.WithLabelValues("stream").Inc()

		if err := emit(Progress{
			Done:    done,
			Total:   total,
			Percent: int(math.Round(float64(done) / float64(total) * 100)),
			Results: passed,
		}); err != nil {
			return err
		}
	}
	if total > 0 {
		metrics.SemanticPassRatio.WithLabelValues("stream").Observe(float64(done) / float64(total))
	}
	return nil
}

// scoreBatch 并发评分一个批次，按输入顺序重组后应用阈值过滤。
// 评分本身不报错；错误只来自 ctx 取消。
func (f *SemanticFilter) scoreBatch(ctx context.Context, userText string, batch []CatalogItem) ([]ScoredItem, error) {
	scores := make([]float64, len(batch))

	g, gctx := errgroup.WithContext(ctx)
	for i := range batch {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			scores[i] = f.scorer.Score(gctx, userText, batch[i].Description)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	passed := make([]ScoredItem, 0, len(batch))
	for i, it := range batch {
		if scores[i] >= f.opts.MinScore {
			passed = append(passed, ScoredItem{CatalogItem: it, Similarity: scores[i]})
		}
	}
	return passed, nil
}
