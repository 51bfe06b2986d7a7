package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// AppConfig — корневая структура конфигурации.
// Она зеркалит структуру config.yaml (или config.toml).
type AppConfig struct {
	Models ModelsConfig `yaml:"models" toml:"models"`
	MCP    MCPConfig    `yaml:"mcp" toml:"mcp"`
	App    AppSpecific  `yaml:"app" toml:"app"`
}

// ModelsConfig — настройки AI моделей.
type ModelsConfig struct {
	DefaultChat string              `yaml:"default_chat" toml:"default_chat"` // Алиас модели для чата
	Definitions map[string]ModelDef `yaml:"definitions" toml:"definitions"`   // Словарь определений моделей
}

// ModelDef — параметры конкретной модели.
type ModelDef struct {
	Provider    string  `yaml:"provider" toml:"provider"`     // "groq", "openai", "gemini", "zai", "deepseek"
	ModelName   string  `yaml:"model_name" toml:"model_name"` // Реальное имя в API
	APIKey      string  `yaml:"api_key" toml:"api_key"`       // Поддерживает ${VAR}
	BaseURL     string  `yaml:"base_url" toml:"base_url"`     // Пусто = URL по умолчанию для провайдера
	MaxTokens   int     `yaml:"max_tokens" toml:"max_tokens"`
	Temperature float64 `yaml:"temperature" toml:"temperature"`
	Timeout     string  `yaml:"timeout" toml:"timeout"` // Лимит на один ход диалога, например "60s"
}

// HasCredentials сообщает, задан ли API ключ.
func (m ModelDef) HasCredentials() bool {
	return strings.TrimSpace(m.APIKey) != ""
}

// TimeoutDuration возвращает Timeout как time.Duration (60s по умолчанию).
func (m ModelDef) TimeoutDuration() time.Duration {
	return parseDurationOr(m.Timeout, 60*time.Second)
}

// MCPConfig — настройки удалённого MCP endpoint с инструментами магазина.
type MCPConfig struct {
	URL             string `yaml:"url" toml:"url"`
	Timeout         string `yaml:"timeout" toml:"timeout"`                   // Timeout HTTP запроса, например "20s"
	RateLimit       int    `yaml:"rate_limit" toml:"rate_limit"`             // Запросов в минуту, 0 = без ограничения
	Burst           int    `yaml:"burst" toml:"burst"`                       // Burst для rate limiter
	SessionAffinity bool   `yaml:"session_affinity" toml:"session_affinity"` // initialize + Mcp-Session-Id
	CatalogMode     string `yaml:"catalog_mode" toml:"catalog_mode"`         // "static" или "discover"
	CacheTTL        string `yaml:"cache_ttl" toml:"cache_ttl"`               // Время жизни обнаруженного каталога
	ClientName      string `yaml:"client_name" toml:"client_name"`
	ClientVersion   string `yaml:"client_version" toml:"client_version"`
	ProtocolVersion string `yaml:"protocol_version" toml:"protocol_version"`
}

// Режимы каталога инструментов.
const (
	CatalogStatic   = "static"
	CatalogDiscover = "discover"
)

// DefaultMCPURL — локальный демо-сервер из cmd/store-mcp.
const DefaultMCPURL = "http://localhost:8080/mcp"

// GetDefaults возвращает копию с дефолтными значениями для незаполненных полей.
func (c MCPConfig) GetDefaults() MCPConfig {
	result := c

	if result.URL == "" {
		result.URL = DefaultMCPURL
	}
	if result.Timeout == "" {
		result.Timeout = "20s"
	}
	if result.Burst == 0 {
		result.Burst = 1
	}
	if result.CatalogMode == "" {
		result.CatalogMode = CatalogStatic
	}
	if result.CacheTTL == "" {
		result.CacheTTL = "5m"
	}
	if result.ClientName == "" {
		result.ClientName = "poncho-techsupport"
	}
	if result.ClientVersion == "" {
		result.ClientVersion = "1.0.0"
	}
	if result.ProtocolVersion == "" {
		result.ProtocolVersion = "2024-11-05"
	}

	return result
}

// TimeoutDuration возвращает timeout HTTP запроса к MCP endpoint.
func (c MCPConfig) TimeoutDuration() time.Duration {
	return parseDurationOr(c.Timeout, 20*time.Second)
}

// CacheTTLDuration возвращает время жизни обнаруженного каталога.
func (c MCPConfig) CacheTTLDuration() time.Duration {
	return parseDurationOr(c.CacheTTL, 5*time.Minute)
}

// AppSpecific — общие настройки приложения.
type AppSpecific struct {
	Title         string `yaml:"title" toml:"title"`
	SystemPrompt  string `yaml:"system_prompt" toml:"system_prompt"`
	MaxToolRounds int    `yaml:"max_tool_rounds" toml:"max_tool_rounds"` // 1 = один раунд инструментов за ход
	LogLevel      string `yaml:"log_level" toml:"log_level"`
	LogDir        string `yaml:"log_dir" toml:"log_dir"`
	ColorScheme   string `yaml:"color_scheme" toml:"color_scheme"`
	Debug         bool   `yaml:"debug" toml:"debug"`
}

// Load читает YAML/TOML файл, подставляет ENV переменные и возвращает готовую структуру.
//
// Формат определяется по расширению: .toml читается как TOML, всё остальное как YAML.
func Load(path string) (*AppConfig, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found at: %s", path)
	}

	rawBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// os.ExpandEnv заменяет ${VAR} или $VAR на значение из системы.
	contentWithEnv := []byte(os.ExpandEnv(string(rawBytes)))

	var cfg AppConfig
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if err := toml.Unmarshal(contentWithEnv, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse toml: %w", err)
		}
	} else {
		if err := yaml.Unmarshal(contentWithEnv, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	cfg.applyDefaults()
	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default возвращает конфигурацию без файла: Groq + локальный MCP endpoint.
//
// API ключ и URL берутся из окружения, как в Load.
func Default() *AppConfig {
	cfg := &AppConfig{
		Models: ModelsConfig{
			DefaultChat: "llama-3.3-70b",
			Definitions: map[string]ModelDef{
				"llama-3.3-70b": {
					Provider:  "groq",
					ModelName: "llama-3.3-70b-versatile",
				},
			},
		},
	}
	cfg.applyDefaults()
	cfg.applyEnvOverrides()
	return cfg
}

// applyDefaults заполняет незаданные поля.
func (c *AppConfig) applyDefaults() {
	c.MCP = c.MCP.GetDefaults()

	if c.App.Title == "" {
		c.App.Title = "TechSupport AI"
	}
	if c.App.SystemPrompt == "" {
		c.App.SystemPrompt = DefaultSystemPrompt
	}
	if c.App.MaxToolRounds == 0 {
		c.App.MaxToolRounds = 1
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.ColorScheme == "" {
		c.App.ColorScheme = "default"
	}

	// Единственная модель становится моделью по умолчанию
	if c.Models.DefaultChat == "" && len(c.Models.Definitions) == 1 {
		for alias := range c.Models.Definitions {
			c.Models.DefaultChat = alias
		}
	}
}

// providerKeyEnv — переменные окружения с API ключом для каждого провайдера.
var providerKeyEnv = map[string][]string{
	"groq":     {"GROQ_API_KEY"},
	"openai":   {"OPENAI_API_KEY"},
	"gemini":   {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
	"zai":      {"ZAI_API_KEY"},
	"deepseek": {"DEEPSEEK_API_KEY"},
}

// applyEnvOverrides подставляет ключи и URL из окружения.
//
// Пустой api_key заполняется из LLM_API_KEY или ключа провайдера.
// MCP_URL всегда переопределяет mcp.url.
func (c *AppConfig) applyEnvOverrides() {
	for alias, def := range c.Models.Definitions {
		if def.HasCredentials() {
			continue
		}
		candidates := append([]string{"LLM_API_KEY"}, providerKeyEnv[def.Provider]...)
		for _, name := range candidates {
			if v := strings.TrimSpace(os.Getenv(name)); v != "" {
				def.APIKey = v
				break
			}
		}
		c.Models.Definitions[alias] = def
	}

	if v := strings.TrimSpace(os.Getenv("MCP_URL")); v != "" {
		c.MCP.URL = v
	}
}

// validate проверяет обязательные поля.
//
// Отсутствие API ключа здесь не ошибка: UI запросит его до начала диалога.
func (c *AppConfig) validate() error {
	if len(c.Models.Definitions) == 0 {
		return fmt.Errorf("models.definitions must contain at least one model")
	}
	if c.Models.DefaultChat == "" {
		return fmt.Errorf("models.default_chat is required when several models are defined")
	}
	if _, ok := c.Models.Definitions[c.Models.DefaultChat]; !ok {
		return fmt.Errorf("default_chat model '%s' is not defined in definitions", c.Models.DefaultChat)
	}
	for alias, def := range c.Models.Definitions {
		if def.ModelName == "" {
			return fmt.Errorf("models.definitions.%s.model_name is required", alias)
		}
		if def.Timeout != "" {
			if _, err := time.ParseDuration(def.Timeout); err != nil {
				return fmt.Errorf("models.definitions.%s.timeout: %w", alias, err)
			}
		}
	}

	if c.MCP.URL == "" {
		return fmt.Errorf("mcp.url is required")
	}
	if _, err := time.ParseDuration(c.MCP.Timeout); err != nil {
		return fmt.Errorf("invalid mcp.timeout format: %w", err)
	}
	if _, err := time.ParseDuration(c.MCP.CacheTTL); err != nil {
		return fmt.Errorf("invalid mcp.cache_ttl format: %w", err)
	}
	if c.MCP.RateLimit < 0 {
		return fmt.Errorf("mcp.rate_limit must not be negative")
	}
	switch c.MCP.CatalogMode {
	case CatalogStatic, CatalogDiscover:
	default:
		return fmt.Errorf("mcp.catalog_mode must be '%s' or '%s', got '%s'", CatalogStatic, CatalogDiscover, c.MCP.CatalogMode)
	}

	if c.App.MaxToolRounds < 1 {
		return fmt.Errorf("app.max_tool_rounds must be >= 1")
	}

	return nil
}

// GetChatModel возвращает конфигурацию модели для чата по алиасу.
// Пустой алиас означает models.default_chat.
func (c *AppConfig) GetChatModel(name string) (ModelDef, bool) {
	if name == "" {
		name = c.Models.DefaultChat
	}
	m, ok := c.Models.Definitions[name]
	return m, ok
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
