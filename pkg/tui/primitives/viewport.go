// Package primitives предоставляет low-level UI компоненты чата:
//   - ViewportManager: лента сообщений с переносом строк и smart scroll
//   - StatusBarManager: статус-бар со spinner
package primitives

import (
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/wordwrap"
	"github.com/muesli/reflow/wrap"
)

// minWidth — ширина, меньше которой перенос не имеет смысла.
const minWidth = 20

// ViewportManager хранит исходные строки ленты и переносит их под текущую ширину.
//
// Исходные строки хранятся без переноса: при resize весь текст
// переносится заново.
type ViewportManager struct {
	viewport viewport.Model
	logLines []string
	mu       sync.RWMutex
}

// NewViewportManager создаёт пустой ViewportManager.
func NewViewportManager() *ViewportManager {
	return &ViewportManager{
		viewport: viewport.New(0, 0),
	}
}

// HandleResize пересчитывает размеры под окно и переносит контент заново.
func (vm *ViewportManager) HandleResize(msg tea.WindowSizeMsg, headerHeight, footerHeight int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	vpHeight := msg.Height - headerHeight - footerHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	vpWidth := msg.Width
	if vpWidth < minWidth {
		vpWidth = minWidth
	}

	// wasAtBottom считается до изменения высоты
	wasAtBottom := vm.atBottom()

	vm.viewport.Height = vpHeight
	vm.viewport.Width = vpWidth
	vm.viewport.SetContent(vm.render())

	if wasAtBottom {
		vm.viewport.GotoBottom()
		return
	}
	maxOffset := vm.viewport.TotalLineCount() - vm.viewport.Height
	if maxOffset < 0 {
		maxOffset = 0
	}
	if vm.viewport.YOffset > maxOffset {
		vm.viewport.SetYOffset(maxOffset)
	}
}

// Append добавляет строку в ленту. Если пользователь был внизу, лента
// прокручивается к новому сообщению, иначе позиция сохраняется.
func (vm *ViewportManager) Append(content string) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	wasAtBottom := vm.atBottom()
	vm.logLines = append(vm.logLines, content)
	vm.viewport.SetContent(vm.render())
	if wasAtBottom {
		vm.viewport.GotoBottom()
	}
}

// Update передаёт сообщение (клавиши, мышь) во viewport.
func (vm *ViewportManager) Update(msg tea.Msg) tea.Cmd {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	var cmd tea.Cmd
	vm.viewport, cmd = vm.viewport.Update(msg)
	return cmd
}

// View возвращает отрисованную ленту.
func (vm *ViewportManager) View() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.viewport.View()
}

// Content возвращает исходные строки ленты.
func (vm *ViewportManager) Content() []string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()

	out := make([]string, len(vm.logLines))
	copy(out, vm.logLines)
	return out
}

// Rendered возвращает весь перенесённый текст ленты.
func (vm *ViewportManager) Rendered() string {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.render()
}

// ScrollUp прокручивает ленту вверх на n строк.
func (vm *ViewportManager) ScrollUp(n int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.viewport.ScrollUp(n)
}

// ScrollDown прокручивает ленту вниз на n строк.
func (vm *ViewportManager) ScrollDown(n int) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	vm.viewport.ScrollDown(n)
}

// GetDimensions возвращает текущие размеры viewport.
func (vm *ViewportManager) GetDimensions() (width, height int) {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.viewport.Width, vm.viewport.Height
}

// AtBottom сообщает, показан ли конец ленты.
func (vm *ViewportManager) AtBottom() bool {
	vm.mu.RLock()
	defer vm.mu.RUnlock()
	return vm.atBottom()
}

func (vm *ViewportManager) atBottom() bool {
	return vm.viewport.YOffset+vm.viewport.Height >= vm.viewport.TotalLineCount()
}

// render переносит строки по словам, а слишком длинные слова режет жёстко.
// Вызывается под мьютексом.
func (vm *ViewportManager) render() string {
	width := vm.viewport.Width
	if width <= 0 {
		return strings.Join(vm.logLines, "\n")
	}
	wrapped := make([]string, 0, len(vm.logLines))
	for _, line := range vm.logLines {
		wrapped = append(wrapped, WrapText(line, width))
	}
	return strings.Join(wrapped, "\n")
}

// WrapText переносит текст под ширину: сначала по словам, затем жёстко.
func WrapText(s string, width int) string {
	if width <= 0 {
		return s
	}
	return wrap.String(wordwrap.String(s, width), width)
}
