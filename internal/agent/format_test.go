package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilkoid/poncho-techsupport/pkg/llm"
)

func TestFormatHistory(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "price of A?"},
		{Role: "Assistant", ToolCalls: []llm.ToolCall{{ID: "1", Name: "get_product", Args: `{"sku":"A"}`}}},
		{Role: llm.RoleTool, ToolCallID: "1", Name: "get_product", Content: "A: $5"},
		{Role: llm.RoleTool, ToolCallID: "missing", Name: "get_product", Content: "orphan"},
		{Role: "narrator", Content: "dropped"},
		{Role: llm.RoleAssistant, Content: "A costs $5"},
	}

	got := FormatHistory(history)
	require.Len(t, got, 4)
	assert.Equal(t, []llm.Role{llm.RoleUser, llm.RoleAssistant, llm.RoleTool, llm.RoleAssistant}, roles(got))
	assert.Equal(t, "A: $5", got[2].Content)

	assert.Equal(t, got, FormatHistory(got), "formatting is idempotent")
}

func TestFormatHistory_ReturnsCopy(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "q"},
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "1", Name: "x"}}},
	}

	got := FormatHistory(history)
	got[0].Content = "changed"
	got[1].ToolCalls[0].Name = "changed"

	assert.Equal(t, "q", history[0].Content)
	assert.Equal(t, "x", history[1].ToolCalls[0].Name)
}

func TestFormatHistory_ToolAfterUserIsOrphan(t *testing.T) {
	history := []llm.Message{
		{Role: llm.RoleAssistant, ToolCalls: []llm.ToolCall{{ID: "1", Name: "x"}}},
		{Role: llm.RoleUser, Content: "interrupt"},
		{Role: llm.RoleTool, ToolCallID: "1", Content: "late"},
	}
	assert.Len(t, FormatHistory(history), 2)
}

func TestSession_CloneIsIndependent(t *testing.T) {
	s := NewSession()
	s.History = []llm.Message{{Role: llm.RoleUser, Content: "a"}}

	c := s.Clone()
	c.History[0].Content = "b"
	c.History = append(c.History, llm.Message{Role: llm.RoleAssistant})

	assert.Equal(t, "a", s.History[0].Content)
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, s.ID, c.ID)
	assert.NotEmpty(t, s.ID)
}
