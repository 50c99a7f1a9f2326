package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino/components/model"

	"github.com/zhouzirui/summachat/backend/internal/model/summary"
)

// 支持的摘要后端。
const (
	ProviderArk        = "ark"
	ProviderOpenAI     = "openai"
	ProviderExtractive = "extractive"
)

// Config 聚合整个服务的配置项。
type Config struct {
	Server     ServerConfig
	Session    SessionConfig
	Gateway    GatewayConfig
	Generation summary.Params
	Log        LogConfig
}

// Load 从环境变量加载配置。
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}

	addr, err := normalizeAddr(cfg.Server.Port)
	if err != nil {
		return nil, err
	}
	cfg.Server.Addr = addr

	if cfg.Session.TTL < 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL value: %s", cfg.Session.TTL)
	}

	cfg.Gateway.Provider = cfg.Gateway.ResolveProvider()
	if err := cfg.Gateway.Validate(); err != nil {
		return nil, err
	}

	if err := cfg.Generation.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generation params: %w", err)
	}

	return &cfg, nil
}

// ServerConfig 描述 HTTP 服务配置。
type ServerConfig struct {
	Port string `env:"PORT" envDefault:"8080"`
	Addr string
}

// SessionConfig 控制匿名会话的生命周期，TTL 为 0 时会话只在显式结束时释放。
type SessionConfig struct {
	TTL time.Duration `env:"SESSION_TTL" envDefault:"30m"`
}

// normalizeAddr 解析服务器监听地址。
func normalizeAddr(port string) (string, error) {
	port = strings.TrimSpace(port)
	if port == "" {
		port = "8080"
	}

	if strings.Contains(port, " ") {
		return "", fmt.Errorf("invalid PORT value: %q", port)
	}

	if strings.Contains(port, ":") {
		// 允许用户直接传入 ":8080" 或 "127.0.0.1:8080"。
		return port, nil
	}

	return ":" + port, nil
}

// LogConfig 控制日志级别与输出格式。
type LogConfig struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
}

// GatewayConfig 描述摘要网关的后端选择与凭证。
type GatewayConfig struct {
	Provider string        `env:"SUMMARIZER_PROVIDER"`
	Timeout  time.Duration `env:"SUMMARIZER_TIMEOUT" envDefault:"60s"`
	Ark      AIConfig
	OpenAI   OpenAIConfig
}

// ResolveProvider returns the configured provider, or picks one from the
// credentials that are present.
func (c GatewayConfig) ResolveProvider() string {
	if p := strings.ToLower(strings.TrimSpace(c.Provider)); p != "" {
		return p
	}
	switch {
	case c.Ark.Enabled():
		return ProviderArk
	case c.OpenAI.Enabled():
		return ProviderOpenAI
	default:
		return ProviderExtractive
	}
}

// Validate 校验所选后端的必需配置。
func (c GatewayConfig) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("invalid SUMMARIZER_TIMEOUT value: %s", c.Timeout)
	}

	switch c.ResolveProvider() {
	case ProviderArk:
		if !c.Ark.Enabled() {
			return errors.New("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
		}
	case ProviderOpenAI:
		if !c.OpenAI.Enabled() {
			return errors.New("OPENAI_API_KEY is required for the openai provider")
		}
	case ProviderExtractive:
	default:
		return fmt.Errorf("unknown SUMMARIZER_PROVIDER %q", c.Provider)
	}
	return nil
}

// AIConfig 描述 Ark 大模型相关配置。
type AIConfig struct {
	APIKey    string `env:"ARK_API_KEY"`
	AccessKey string `env:"ARK_ACCESS_KEY"`
	SecretKey string `env:"ARK_SECRET_KEY"`
	Model     string `env:"Model"`
	BaseURL   string `env:"ARK_BASE_URL" envDefault:"https://ark.cn-beijing.volces.com/api/v3"`
	Region    string `env:"ARK_REGION"   envDefault:"cn-beijing"`
}

// Enabled 表示是否提供了必需的密钥。
func (c AIConfig) Enabled() bool {
	return c.Model != "" && (c.APIKey != "" || (c.AccessKey != "" && c.SecretKey != ""))
}

// NewChatModel 使用配置创建一个模型实例。生成参数在每次调用时传入。
func (c AIConfig) NewChatModel(ctx context.Context) (model.ChatModel, error) {
	if !c.Enabled() {
		return nil, errors.New("Ark 凭证或模型配置缺失，至少提供 ARK_API_KEY + Model 或 AK/SK 组合")
	}

	cfg := &ark.ChatModelConfig{
		BaseURL:   c.BaseURL,
		Region:    c.Region,
		APIKey:    c.APIKey,
		AccessKey: c.AccessKey,
		SecretKey: c.SecretKey,
		Model:     c.Model,
	}

	return ark.NewChatModel(ctx, cfg)
}

// OpenAIConfig 描述 OpenAI Responses API 的配置。
type OpenAIConfig struct {
	APIKey  string `env:"OPENAI_API_KEY"`
	Model   string `env:"OPENAI_MODEL"    envDefault:"gpt-4o-mini"`
	BaseURL string `env:"OPENAI_BASE_URL"`
}

// Enabled reports whether an API key is configured.
func (c OpenAIConfig) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}
