// Package handler 提供 HTTP 请求处理器
package handler

import (
	"encoding/json"
	"net/http"

	"ai-media-search/internal/interfaces/http/dto"
	"ai-media-search/internal/search"
	"ai-media-search/pkg/errors"
	"ai-media-search/pkg/logger"

	"github.com/gin-gonic/gin"
)

// SearchHandler 检索处理器
type SearchHandler struct {
	svc          *search.Service
	apiKeyLoaded func() bool
}

// NewSearchHandler 创建检索处理器。apiKeyLoaded 上报补全密钥
// 是否就位（缺失不阻断请求，调用会按降级规则失败）。
func NewSearchHandler(svc *search.Service, apiKeyLoaded func() bool) *SearchHandler {
	return &SearchHandler{svc: svc, apiKeyLoaded: apiKeyLoaded}
}

// Search 非流式检索：返回原始召回结果，不做语义过滤
func (h *SearchHandler) Search(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	mediaType, err := search.ParseMediaType(req.Type)
	if err != nil {
		dto.Error(c, http.StatusBadRequest, "unknown media type", req.Type)
		return
	}

	ctx := c.Request.Context()
	out, err := h.svc.Search(ctx, search.Request{Text: req.Text, Type: mediaType})
	if err != nil {
		appErr := errors.AsAppError(err)
		logger.Error(ctx, "search failed", err, "media_type", string(mediaType))
		dto.Error(c, appErr.HTTPStatus, appErr.Message, appErr.Detail)
		return
	}

	c.JSON(http.StatusOK, dto.SearchResponse{
		Input:  req.Text,
		Type:   string(mediaType),
		AITags: out.AITags,
		TagIDs: out.TagIDs,
		Status: dto.SearchStatus{
			Source:   out.Source,
			Degraded: out.Degraded,
		},
		Results: out.Items,
		Debug:   dto.SearchDebug{APIKeyLoaded: h.apiKeyLoaded()},
	})
}

// SearchStream 流式检索：召回后做流式语义过滤，
// 以 chunked NDJSON 逐批推送进度，终止于 end 或 error 记录。
func (h *SearchHandler) SearchStream(c *gin.Context) {
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	mediaType, err := search.ParseMediaType(req.Type)
	if err != nil {
		dto.Error(c, http.StatusBadRequest, "unknown media type", req.Type)
		return
	}

	c.Header("Content-Type", "application/json; charset=utf-8")
	c.Header("Transfer-Encoding", "chunked")
	c.Header("X-Accel-Buffering", "no")

	ctx := c.Request.Context()
	enc := json.NewEncoder(c.Writer)
	emit := func(p search.Progress) error {
		if err := enc.Encode(dto.NewProgressEvent(p)); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	if err := h.svc.SearchStream(ctx, search.Request{Text: req.Text, Type: mediaType}, emit); err != nil {
		if ctx.Err() != nil {
			// 客户端断开，无处可写
			return
		}
		logger.Error(ctx, "search stream failed", err, "media_type", string(mediaType))
		_ = enc.Encode(dto.NewErrorEvent(err.Error()))
		c.Writer.Flush()
		return
	}

	_ = enc.Encode(dto.NewEndEvent())
	c.Writer.Flush()
}
