package factory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ilkoid/poncho-techsupport/pkg/config"
	"github.com/ilkoid/poncho-techsupport/pkg/llm"
	"github.com/ilkoid/poncho-techsupport/pkg/llm/openai"
)

// ErrMissingAPIKey возвращается, если у модели не задан API ключ.
var ErrMissingAPIKey = errors.New("llm api key is not configured")

// providerBaseURLs — OpenAI-совместимые endpoints провайдеров.
// Пустая строка означает URL по умолчанию из SDK (api.openai.com).
var providerBaseURLs = map[string]string{
	"openai":   "",
	"groq":     "https://api.groq.com/openai/v1",
	"gemini":   "https://generativelanguage.googleapis.com/v1beta/openai/",
	"zai":      "https://api.z.ai/api/paas/v4",
	"deepseek": "https://api.deepseek.com/v1",
}

// NewLLMProvider создает провайдера на основе конфигурации модели
func NewLLMProvider(modelDef config.ModelDef) (llm.Provider, error) {
	if !modelDef.HasCredentials() {
		return nil, fmt.Errorf("model %q: %w", modelDef.ModelName, ErrMissingAPIKey)
	}

	provider := strings.ToLower(strings.TrimSpace(modelDef.Provider))
	defaultURL, ok := providerBaseURLs[provider]
	if !ok {
		return nil, fmt.Errorf("unknown provider type: %s", modelDef.Provider)
	}

	if modelDef.BaseURL == "" {
		modelDef.BaseURL = defaultURL
	}

	return openai.NewClient(modelDef), nil
}
