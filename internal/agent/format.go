package agent

import (
	"strings"

	"github.com/ilkoid/poncho-techsupport/pkg/llm"
	"github.com/ilkoid/poncho-techsupport/pkg/utils"
)

// FormatHistory — единственный шаг нормализации перед вызовом LLM.
//
// Возвращает копию истории: роли приводятся к нижнему регистру,
// сообщения с неизвестной ролью и tool-сообщения без соответствующего
// вызова в предыдущем assistant сообщении отбрасываются.
// FormatHistory(FormatHistory(h)) == FormatHistory(h).
func FormatHistory(history []llm.Message) []llm.Message {
	out := make([]llm.Message, 0, len(history))
	var pending map[string]bool // id вызовов последнего assistant сообщения

	for _, m := range history {
		m = m.Clone()
		m.Role = llm.Role(strings.ToLower(strings.TrimSpace(string(m.Role))))

		switch m.Role {
		case llm.RoleSystem, llm.RoleUser:
			pending = nil
		case llm.RoleAssistant:
			pending = make(map[string]bool, len(m.ToolCalls))
			for _, tc := range m.ToolCalls {
				pending[tc.ID] = true
			}
		case llm.RoleTool:
			if !pending[m.ToolCallID] {
				utils.Warn("Dropping orphan tool message", "tool_call_id", m.ToolCallID, "name", m.Name)
				continue
			}
		default:
			utils.Warn("Dropping message with unknown role", "role", string(m.Role))
			continue
		}

		out = append(out, m)
	}

	return out
}
