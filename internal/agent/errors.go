package agent

import "errors"

var (
	// ErrEmptyInput — пустое сообщение пользователя, LLM не вызывается.
	ErrEmptyInput = errors.New("empty user input")

	// ErrMalformedToolArguments — модель прислала аргументы, которые не являются
	// JSON объектом. Ход прерывается до вызова любого инструмента.
	ErrMalformedToolArguments = errors.New("malformed tool call arguments")

	// ErrTurnInProgress — предыдущий ход ещё не завершён.
	ErrTurnInProgress = errors.New("another turn is in progress")
)
