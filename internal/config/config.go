// Package config 提供配置加载和管理功能
package config

import (
	"time"
)

// Config 应用配置根结构
type Config struct {
	App           AppConfig           `yaml:"app" mapstructure:"app"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	LLM           LLMConfig           `yaml:"llm" mapstructure:"llm"`
	Catalogs      CatalogsConfig      `yaml:"catalogs" mapstructure:"catalogs"`
	Search        SearchConfig        `yaml:"search" mapstructure:"search"`
	Observability ObservabilityConfig `yaml:"observability" mapstructure:"observability"`
	Security      SecurityConfig      `yaml:"security" mapstructure:"security"`
}

// AppConfig 应用基础配置
type AppConfig struct {
	Name    string `yaml:"name" mapstructure:"name"`
	Version string `yaml:"version" mapstructure:"version"`
	Env     string `yaml:"env" mapstructure:"env"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	HTTP HTTPServerConfig `yaml:"http" mapstructure:"http"`
}

// HTTPServerConfig HTTP 服务器配置
type HTTPServerConfig struct {
	Host         string        `yaml:"host" mapstructure:"host"`
	Port         int           `yaml:"port" mapstructure:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
}

// LLMConfig LLM 配置
type LLMConfig struct {
	DefaultProvider string                    `yaml:"default_provider" mapstructure:"default_provider"`
	Providers       map[string]ProviderConfig `yaml:"providers" mapstructure:"providers"`
}

// ProviderConfig LLM 提供商配置
type ProviderConfig struct {
	APIKey      string        `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string        `yaml:"base_url" mapstructure:"base_url"`
	Model       string        `yaml:"model" mapstructure:"model"`
	MaxTokens   int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64       `yaml:"temperature" mapstructure:"temperature"`
	Timeout     time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// CatalogsConfig 外部媒体目录配置
type CatalogsConfig struct {
	VNDB    VNDBConfig    `yaml:"vndb" mapstructure:"vndb"`
	AniList AniListConfig `yaml:"anilist" mapstructure:"anilist"`
}

// VNDBConfig VNDB kana API 配置
type VNDBConfig struct {
	BaseURL string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// AniListConfig AniList GraphQL API 配置
type AniListConfig struct {
	Endpoint string        `yaml:"endpoint" mapstructure:"endpoint"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
	PerPage  int           `yaml:"per_page" mapstructure:"per_page"`
}

// SearchConfig 检索管线调优配置
type SearchConfig struct {
	// Retrieval 目录召回参数
	Retrieval RetrievalConfig `yaml:"retrieval" mapstructure:"retrieval"`
	// Semantic 语义过滤参数
	Semantic SemanticConfig `yaml:"semantic" mapstructure:"semantic"`
	// ResolverConcurrency 标签解析的并发上限
	ResolverConcurrency int `yaml:"resolver_concurrency" mapstructure:"resolver_concurrency"`
	// MaxTags 单次请求最多采纳的 AI 标签数
	MaxTags int `yaml:"max_tags" mapstructure:"max_tags"`
}

// RetrievalConfig 目录召回参数
type RetrievalConfig struct {
	MaxResults int `yaml:"max_results" mapstructure:"max_results"`
	PageSize   int `yaml:"page_size" mapstructure:"page_size"`
	MinRating  int `yaml:"min_rating" mapstructure:"min_rating"`
	MinVotes   int `yaml:"min_votes" mapstructure:"min_votes"`
}

// SemanticConfig 语义过滤参数
type SemanticConfig struct {
	MinScore      float64 `yaml:"min_score" mapstructure:"min_score"`
	MinDescLength int     `yaml:"min_desc_length" mapstructure:"min_desc_length"`
	TopN          int     `yaml:"top_n" mapstructure:"top_n"`
	BatchSize     int     `yaml:"batch_size" mapstructure:"batch_size"`
	MaxResults    int     `yaml:"max_results" mapstructure:"max_results"`
}

// ObservabilityConfig 可观测性配置
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// LoggingConfig 日志配置
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// TracingConfig 追踪配置
type TracingConfig struct {
	Enabled    bool    `yaml:"enabled" mapstructure:"enabled"`
	Endpoint   string  `yaml:"endpoint" mapstructure:"endpoint"`
	SampleRate float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// MetricsConfig 指标配置
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled" mapstructure:"enabled"`
	Path    string `yaml:"path" mapstructure:"path"`
}

// SecurityConfig 安全配置
type SecurityConfig struct {
	CORS CORSConfig `yaml:"cors" mapstructure:"cors"`
}

// CORSConfig CORS 配置
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods" mapstructure:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers" mapstructure:"allowed_headers"`
}
