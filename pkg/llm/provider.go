// Интерфейс Провайдера через который работает всё приложение.

package llm

import "context"

// Provider — контракт для любого AI-сервиса.
type Provider interface {
	// Generate принимает контекст и историю сообщений.
	// Возвращает ответ модели в унифицированном формате Message.
	//
	// opts — опциональные аргументы:
	//   - []tools.ToolDefinition: определения функций (Function Calling)
	//   - GenerateOption: переопределение параметров генерации
	Generate(ctx context.Context, messages []Message, opts ...any) (Message, error)
}
