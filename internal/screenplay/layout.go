// Package screenplay приводит свободный текст сценария к разметке с фиксированными колонками.
//
// Каждая строка получает ровно один класс (сцена, переход, реплика персонажа,
// ремарка, диалог, действие, пустая) и выводится с отступом своего класса.
// Все отступы вычисляются из ширины строки.
package screenplay

// DefaultLineWidth используется, когда ширина не задана или не положительна.
const DefaultLineWidth = 80

// Layout - производные колонки для заданной ширины строки.
type Layout struct {
	Width               int
	CueCenter           int // центр имени персонажа
	ParentheticalIndent int // floor(0.1875 * w)
	DialogueMargin      int // floor(0.125 * w), слева и справа
	DialogueWidth       int // w - 2*margin, минимум 1
	TransitionEdge      int // правый край переходов, floor(7/8 * w)
}

// NewLayout пересчитывает колонки из ширины. width <= 0 означает DefaultLineWidth.
func NewLayout(width int) Layout {
	if width <= 0 {
		width = DefaultLineWidth
	}
	margin := width / 8
	dialogueWidth := width - 2*margin
	if dialogueWidth < 1 {
		dialogueWidth = 1
	}
	return Layout{
		Width:               width,
		CueCenter:           width / 2,
		ParentheticalIndent: width * 3 / 16,
		DialogueMargin:      margin,
		DialogueWidth:       dialogueWidth,
		TransitionEdge:      width * 7 / 8,
	}
}

// cuePad - левый отступ имени: max(0, floor(w/2 - len/2)).
func (l Layout) cuePad(length int) int {
	return nonNegative((l.Width - length) / 2)
}

// transitionPad - левый отступ перехода, чтобы он заканчивался на TransitionEdge.
func (l Layout) transitionPad(length int) int {
	return nonNegative(l.TransitionEdge - length)
}

func nonNegative(n int) int {
	if n < 0 {
		return 0
	}
	return n
}
