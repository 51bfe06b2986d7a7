package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyOptions(t *testing.T) {
	base := GenerateOptions{Model: "base-model", Temperature: 0.2, MaxTokens: 512}

	got := ApplyOptions(base,
		"ignored",
		WithModel("override"),
		42,
		WithMaxTokens(1024),
	)

	assert.Equal(t, "override", got.Model)
	assert.Equal(t, 0.2, got.Temperature)
	assert.Equal(t, 1024, got.MaxTokens)

	// base не должен меняться
	assert.Equal(t, "base-model", base.Model)
}

func TestMessageClone(t *testing.T) {
	orig := Message{
		Role:      RoleAssistant,
		ToolCalls: []ToolCall{{ID: "call_1", Name: "get_product", Args: `{"sku":"SKU123"}`}},
	}

	cp := orig.Clone()
	cp.ToolCalls[0].Name = "changed"

	assert.Equal(t, "get_product", orig.ToolCalls[0].Name)
	assert.True(t, cp.HasToolCalls())
	assert.False(t, Message{Role: RoleUser}.HasToolCalls())
}
