// Package main 检索服务入口
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ai-media-search/internal/config"
	"ai-media-search/internal/infrastructure/anilist"
	"ai-media-search/internal/infrastructure/llm"
	"ai-media-search/internal/infrastructure/vndb"
	"ai-media-search/internal/interfaces/http/handler"
	"ai-media-search/internal/interfaces/http/router"
	"ai-media-search/internal/search"
	"ai-media-search/pkg/logger"
	"ai-media-search/pkg/tracer"

	"github.com/joho/godotenv"
)

// Version 版本信息，构建时注入
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件（如果存在）
	_ = godotenv.Load()

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	logger.Init(
		cfg.Observability.Logging.Level,
		cfg.Observability.Logging.Format,
	)

	ctx := context.Background()
	log := logger.FromContext(ctx)
	log.Info("starting search-svc",
		"version", Version,
		"build_time", BuildTime,
		"env", cfg.App.Env,
	)

	// 初始化追踪
	shutdown, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		log.Error("failed to init tracer", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(ctx); err != nil {
			log.Error("failed to shutdown tracer", "error", err)
		}
	}()

	// 外部目录客户端
	vndbClient := vndb.NewClient(&cfg.Catalogs.VNDB)
	anilistClient := anilist.NewClient(&cfg.Catalogs.AniList)

	// 官方标签词表：启动时异步加载一次，失败降级为不过滤
	vocab := search.NewVocabulary(anilistClient.TagVocabulary)
	vocab.StartLoad(ctx, cfg.Catalogs.AniList.Timeout+5*time.Second)

	// LLM 客户端
	llmFactory := llm.NewFactory(cfg)
	completer := llm.NewCompleter(llmFactory, "")

	// 检索管线
	svc := search.NewService(
		search.NewTagExtractor(completer, vocab, cfg.Search.MaxTags),
		search.NewTagResolver(vndbClient, cfg.Search.ResolverConcurrency),
		search.NewVNRetriever(vndbClient, search.RetrievalOptions{
			MaxResults: cfg.Search.Retrieval.MaxResults,
			PageSize:   cfg.Search.Retrieval.PageSize,
			MinRating:  cfg.Search.Retrieval.MinRating,
			MinVotes:   cfg.Search.Retrieval.MinVotes,
		}),
		search.NewMediaRetriever(anilistClient),
		search.NewSemanticFilter(search.NewSimilarityScorer(completer), search.FilterOptions{
			MinScore:      cfg.Search.Semantic.MinScore,
			MinDescLength: cfg.Search.Semantic.MinDescLength,
			TopN:          cfg.Search.Semantic.TopN,
			BatchSize:     cfg.Search.Semantic.BatchSize,
			MaxResults:    cfg.Search.Semantic.MaxResults,
		}),
	)

	// 路由
	r := router.New(cfg,
		handler.NewSearchHandler(svc, llmFactory.APIKeyLoaded),
		handler.NewHealthHandler(Version, vocab),
	)

	// 创建 HTTP 服务器
	addr := fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	// 启动服务器
	go func() {
		log.Info("http server starting", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "error", err)
			os.Exit(1)
		}
	}()

	// 等待中断信号
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	// 优雅关闭
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", "error", err)
	}

	log.Info("server exited")
}
