package utils

import (
	"testing"
)

func TestCleanJsonBlock(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain JSON",
			input:    `{"sku": "SKU123"}`,
			expected: `{"sku": "SKU123"}`,
		},
		{
			name:     "JSON in markdown code block",
			input:    "```json\n{\"sku\": \"SKU123\"}\n```",
			expected: `{"sku": "SKU123"}`,
		},
		{
			name:     "JSON with mixed case",
			input:    "```JSON\n{\"sku\": \"SKU123\"}\n```",
			expected: `{"sku": "SKU123"}`,
		},
		{
			name:     "JSON with only triple backticks",
			input:    "```\n{\"sku\": \"SKU123\"}\n```",
			expected: `{"sku": "SKU123"}`,
		},
		{
			name:     "JSON with extra whitespace",
			input:    "  ```json  \n  {\"sku\": \"SKU123\"}  \n  ```  ",
			expected: `{"sku": "SKU123"}`,
		},
		{
			name:     "trailing text keeps closing fence",
			input:    "```json\n{\"sku\": \"SKU123\"}\n``` done",
			expected: "{\"sku\": \"SKU123\"}\n``` done",
		},
		{
			name:     "empty",
			input:    "   ",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanJsonBlock(tt.input)
			if result != tt.expected {
				t.Errorf("CleanJsonBlock() = %q, want %q", result, tt.expected)
			}
		})
	}
}
