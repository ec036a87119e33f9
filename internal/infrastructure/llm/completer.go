package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"ai-media-search/internal/search"
	"ai-media-search/pkg/metrics"
)

// Completer 将 ChatModel 适配为管线的 Completer port
type Completer struct {
	factory  *Factory
	provider string
}

// NewCompleter 创建补全适配器，provider 为空时使用默认提供商
func NewCompleter(factory *Factory, provider string) *Completer {
	return &Completer{factory: factory, provider: provider}
}

// Complete 执行一次补全调用并返回原始文本
func (c *Completer) Complete(ctx context.Context, req search.CompletionRequest) (string, error) {
	chatModel, err := c.factory.Get(ctx, c.provider)
	if err != nil {
		return "", err
	}

	msgs := []*schema.Message{
		schema.SystemMessage(req.System),
		schema.UserMessage(req.Prompt),
	}
	opts := []model.Option{
		model.WithTemperature(req.Temperature),
	}
	if req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(req.MaxTokens))
	}

	purpose := req.Purpose
	if purpose == "" {
		purpose = "other"
	}
	start := time.Now()
	out, err := chatModel.Generate(ctx, msgs, opts...)
	metrics.LLMCallDuration.WithLabelValues(purpose).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMCallsTotal.WithLabelValues(purpose, "error").Inc()
		return "", fmt.Errorf("llm completion failed: %w", err)
	}
	if out == nil {
		metrics.LLMCallsTotal.WithLabelValues(purpose, "error").Inc()
		return "", fmt.Errorf("empty llm response")
	}
	metrics.LLMCallsTotal.WithLabelValues(purpose, "ok").Inc()
	return out.Content, nil
}
