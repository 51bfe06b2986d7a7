package agent

import (
	"time"

	"github.com/google/uuid"

	"github.com/ilkoid/poncho-techsupport/pkg/llm"
)

// Session — история одного диалога.
//
// Значение передаётся в HandleTurn и возвращается обновлённым;
// исходное значение никогда не меняется. Хранится только в памяти.
type Session struct {
	ID        string
	History   []llm.Message
	CreatedAt time.Time
}

// NewSession создаёт пустую сессию.
func NewSession() Session {
	return Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
}

// Len возвращает число сообщений в истории.
func (s Session) Len() int {
	return len(s.History)
}

// Clone возвращает копию сессии с независимой историей.
func (s Session) Clone() Session {
	out := s
	out.History = make([]llm.Message, len(s.History))
	for i, m := range s.History {
		out.History[i] = m.Clone()
	}
	return out
}
