// Package utils также содержит очистку ответов LLM от markdown-обёртки.
package utils

import (
	"strings"
)

// CleanJsonBlock удаляет markdown-обёртку вокруг JSON.
//
// Модели иногда присылают аргументы инструментов обёрнутыми в кодовый блок:
//
//	```json
//	{"sku": "SKU123"}
//	```
//
// Примеры:
//
//	```json {"a": 1} ``` → {"a": 1}
//	``` {"a": 1} ``` → {"a": 1}
func CleanJsonBlock(s string) string {
	s = strings.TrimSpace(s)

	// Удаляем ```json в начале (регистр не важен)
	if len(s) >= 7 && strings.EqualFold(s[:7], "```json") {
		s = s[7:]
	}

	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")

	return strings.TrimSpace(s)
}
