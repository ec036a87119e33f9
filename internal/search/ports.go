package search

import "context"

// Completer 定义管线对“文本补全模型”的最小依赖（port）。
// 由基础设施层提供具体实现（例如 Eino 的 OpenAI 适配器）。
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}

// CompletionRequest 单次补全调用的参数
type CompletionRequest struct {
	System      string
	Prompt      string
	Temperature float32
	MaxTokens   int
	// Purpose 用于指标与日志归类（tag_extract / similarity）
	Purpose string
}

// VNQuery 分页过滤查询参数（tag-id 过滤族）
type VNQuery struct {
	TagIDs    []string
	MinRating int
	MinVotes  int
	SortBy    string
	Page      int
	PageSize  int
}

// VNRecord 上游返回的原始 VN 记录，评分为 0-100 刻度
type VNRecord struct {
	ID          string
	Title       string
	AltTitle    string
	Description string
	Rating      *float64
	VoteCount   *int
}

// VNCatalog 定义管线对 tag-id 过滤族目录（VNDB）的依赖
type VNCatalog interface {
	// SearchTagID 按名称查询最匹配的标签 id；无匹配时 found 为 false 且不报错
	SearchTagID(ctx context.Context, name string) (id string, found bool, err error)
	// SearchPage 返回一页原始记录；页内条数少于 PageSize 表示数据已尽
	SearchPage(ctx context.Context, q VNQuery) ([]VNRecord, error)
}

// MediaRecord 上游返回的原始媒体记录，评分为 0-100 刻度
type MediaRecord struct {
	ID           int
	TitleRomaji  string
	TitleEnglish string
	TitleNative  string
	Description  string
	AverageScore *int
	SiteURL      string
	CoverLarge   string
	CoverMedium  string
}

// MediaCatalog 定义管线对 tag-name 过滤族目录（AniList）的依赖。
// 上游单次调用内部才做 OR，跨标签的 OR 由管线通过逐标签查询实现。
type MediaCatalog interface {
	// MediaByTag 按单个标签名检索一页媒体记录
	MediaByTag(ctx context.Context, mediaType MediaType, tag string) ([]MediaRecord, error)
	// TagVocabulary 返回官方标签词表（genre + tag 名称）
	TagVocabulary(ctx context.Context) ([]string, error)
}
