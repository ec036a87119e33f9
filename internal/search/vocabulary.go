package search

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"ai-media-search/pkg/logger"
)

// Vocabulary 进程级官方标签词表。启动时异步加载一次，此后只读；
// 加载完成前读取到空词表，消费方须降级为不过滤。
type Vocabulary struct {
	loader func(ctx context.Context) ([]string, error)
	names  atomic.Pointer[vocabSnapshot]
	group  singleflight.Group
}

type vocabSnapshot struct {
	names []string
	set   map[string]struct{}
}

// NewVocabulary 创建词表，loader 通常为 MediaCatalog.TagVocabulary
func NewVocabulary(loader func(ctx context.Context) ([]string, error)) *Vocabulary {
	return &Vocabulary{loader: loader}
}

// StartLoad 在后台加载词表，失败只记日志，不阻塞启动
func (v *Vocabulary) StartLoad(ctx context.Context, timeout time.Duration) {
	go func() {
		loadCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		if err := v.Load(loadCtx); err != nil {
			logger.Warn(ctx, "tag vocabulary load failed, extraction degrades to unfiltered", "error", err.Error())
		}
	}()
}

// Load 拉取并缓存词表；并发调用合并为一次上游请求
func (v *Vocabulary) Load(ctx context.Context) error {
	_, err, _ := v.group.Do("load", func() (any, error) {
		names, err := v.loader(ctx)
		if err != nil {
			return nil, err
		}
		set := make(map[string]struct{}, len(names))
		for _, n := range names {
			set[n] = struct{}{}
		}
		v.names.Store(&vocabSnapshot{names: names, set: set})
		logger.Info(ctx, "tag vocabulary loaded", "count", len(names))
		return nil, nil
	})
	return err
}

// Names 返回词表全量名称；未加载时为空
func (v *Vocabulary) Names() []string {
	if s := v.names.Load(); s != nil {
		return s.names
	}
	return nil
}

// Contains 判断标签是否在官方词表内
func (v *Vocabulary) Contains(name string) bool {
	s := v.names.Load()
	if s == nil {
		return false
	}
	_, ok := s.set[name]
	return ok
}

// Empty 词表是否尚未加载或为空
func (v *Vocabulary) Empty() bool {
	s := v.names.Load()
	return s == nil || len(s.names) == 0
}
