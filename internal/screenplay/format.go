package screenplay

import (
	"strings"
	"unicode/utf8"
)

// Format переразмечает текст сценария под ширину lineWidth.
// Функция чистая и не падает ни на каком входе: неопознанные строки выводятся как действие.
// Каждая входная строка дает одну выходную, кроме длинного диалога, который переносится по словам.
// Строка-продолжение диалога может выйти длиннее колонки, если иначе она начиналась бы
// со скобки, INT./EXT., перехода или заглавного имени.
func Format(text string, lineWidth int) string {
	layout := NewLayout(lineWidth)
	lines := Classify(text)

	out := make([]string, 0, len(lines))
	for _, line := range lines {
		out = append(out, render(line, layout)...)
	}
	return strings.Join(out, "\n")
}

func render(line ScriptLine, l Layout) []string {
	t := line.Text
	switch line.Class {
	case Blank:
		return []string{""}
	case SceneHeading:
		return []string{strings.ToUpper(t)}
	case Transition:
		tr := normalizeTransition(t)
		return []string{pad(l.transitionPad(utf8.RuneCountInString(tr))) + tr}
	case CharacterCue:
		name := strings.ToUpper(t)
		return []string{pad(l.cuePad(utf8.RuneCountInString(name))) + name}
	case Parenthetical:
		return []string{pad(l.ParentheticalIndent) + normalizeParenthetical(t)}
	case Dialogue:
		chunks := wrapDialogue(t, l.DialogueWidth)
		margin := pad(l.DialogueMargin)
		for i, chunk := range chunks {
			chunks[i] = margin + chunk
		}
		return chunks
	}
	return []string{t}
}

func normalizeTransition(t string) string {
	tr := strings.ToUpper(t)
	if !strings.HasSuffix(tr, ":") && !strings.HasSuffix(tr, ".") {
		tr += ":"
	}
	return tr
}

// normalizeParenthetical оставляет ровно одну открывающую и одну закрывающую скобку.
func normalizeParenthetical(t string) string {
	inner := strings.TrimSpace(strings.TrimRight(strings.TrimLeft(t, "( \t"), ") \t"))
	return "(" + inner + ")"
}

func pad(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat(" ", n)
}
