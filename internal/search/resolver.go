package search

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"

	"ai-media-search/pkg/logger"
)

// TagResolver 将标签名映射为来源特定的目录 id。
// 每个标签独立查询；单个标签解析失败只丢弃该标签，不中断其余解析。
type TagResolver struct {
	catalog     VNCatalog
	concurrency int
}

// NewTagResolver 创建标签解析器，concurrency 为并发查询上限
func NewTagResolver(catalog VNCatalog, concurrency int) *TagResolver {
	if concurrency <= 0 {
		concurrency = 5
	}
	return &TagResolver{catalog: catalog, concurrency: concurrency}
}

// Resolve 逐标签做最佳匹配查询，返回命中的 id 列表。
// 输出长度 ≤ 输入长度；无匹配的标签被静默丢弃。
func (r *TagResolver) Resolve(ctx context.Context, names []string) []string {
	if len(names) == 0 {
		return []string{}
	}

	resolved := make([]string, len(names))
	found := make([]bool, len(names))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, name := range names {
		g.Go(func() error {
			id, ok, err := r.catalog.SearchTagID(gctx, name)
			if err != nil {
				logger.Warn(gctx, "tag lookup failed, tag dropped", "tag", name, "error", err.Error())
				return nil
			}
			if ok {
				mu.Lock()
				resolved[i] = id
				found[i] = true
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	ids := make([]string, 0, len(names))
	for i := range names {
		if found[i] {
			ids = append(ids, resolved[i])
		}
	}
	return ids
}
