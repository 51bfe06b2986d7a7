package primitives

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestViewportManager_Append(t *testing.T) {
	vm := NewViewportManager()
	vm.HandleResize(tea.WindowSizeMsg{Width: 80, Height: 20}, 2, 3)

	vm.Append("Line 1")
	vm.Append("Line 2")

	assert.Equal(t, []string{"Line 1", "Line 2"}, vm.Content())
	assert.Contains(t, vm.View(), "Line 2")
}

func TestViewportManager_MinDimensions(t *testing.T) {
	vm := NewViewportManager()
	vm.HandleResize(tea.WindowSizeMsg{Width: 5, Height: 5}, 3, 3)

	width, height := vm.GetDimensions()
	assert.Equal(t, minWidth, width)
	assert.Equal(t, 1, height, "height never drops below 1")
}

func TestViewportManager_ReflowOnResize(t *testing.T) {
	vm := NewViewportManager()
	vm.HandleResize(tea.WindowSizeMsg{Width: 80, Height: 20}, 0, 0)

	long := strings.Repeat("word ", 20)
	vm.Append(long)
	wide := strings.Count(vm.Rendered(), "\n")

	vm.HandleResize(tea.WindowSizeMsg{Width: 25, Height: 20}, 0, 0)
	narrow := strings.Count(vm.Rendered(), "\n")

	assert.Greater(t, narrow, wide)
	for _, line := range strings.Split(vm.Rendered(), "\n") {
		assert.LessOrEqual(t, len(line), 25)
	}
	assert.Equal(t, []string{long}, vm.Content(), "source lines are kept unwrapped")
}

func TestViewportManager_AutoScrollOnlyAtBottom(t *testing.T) {
	vm := NewViewportManager()
	vm.HandleResize(tea.WindowSizeMsg{Width: 40, Height: 5}, 0, 0)

	for i := 0; i < 20; i++ {
		vm.Append("line")
	}
	assert.True(t, vm.AtBottom())

	vm.ScrollUp(5)
	assert.False(t, vm.AtBottom())

	vm.Append("new")
	assert.False(t, vm.AtBottom(), "reading position is preserved")

	vm.ScrollDown(100)
	vm.Append("newer")
	assert.True(t, vm.AtBottom())
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		width int
		want  string
	}{
		{name: "fits", in: "hello world", width: 20, want: "hello world"},
		{name: "word wrap", in: "hello world", width: 6, want: "hello\nworld"},
		{name: "hard wrap long word", in: "abcdefghij", width: 4, want: "abcd\nefgh\nij"},
		{name: "zero width", in: "hello world", width: 0, want: "hello world"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, WrapText(tt.in, tt.width))
		})
	}
}
