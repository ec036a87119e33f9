// Package handler 提供 HTTP 请求处理器
package handler

import (
	"net/http"

	"ai-media-search/internal/interfaces/http/dto"
	"ai-media-search/internal/search"

	"github.com/gin-gonic/gin"
)

// HealthHandler 健康检查处理器
type HealthHandler struct {
	version string
	vocab   *search.Vocabulary
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(version string, vocab *search.Vocabulary) *HealthHandler {
	return &HealthHandler{version: version, vocab: vocab}
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status     string `json:"status"`
	Version    string `json:"version,omitempty"`
	Vocabulary int    `json:"vocabulary_size"`
}

// Health 健康检查。词表未加载只代表抽取降级，不影响可用性。
func (h *HealthHandler) Health(c *gin.Context) {
	size := 0
	if h.vocab != nil {
		size = len(h.vocab.Names())
	}
	dto.Success(c, HealthResponse{
		Status:     "ok",
		Version:    h.version,
		Vocabulary: size,
	})
}

// Live 存活探针
func (h *HealthHandler) Live(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Ready 就绪探针
func (h *HealthHandler) Ready(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
