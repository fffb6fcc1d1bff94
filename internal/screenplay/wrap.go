package screenplay

import (
	"strings"
	"unicode/utf8"
)

// wrapWords переносит текст по словам так, чтобы строка не превышала width символов.
// Слово длиннее width обрезается до width: хвост теряется.
func wrapWords(text string, width int) []string {
	if width < 1 {
		width = 1
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{""}
	}

	var (
		lines   []string
		current strings.Builder
		curLen  int
	)
	flush := func() {
		if curLen > 0 {
			lines = append(lines, current.String())
			current.Reset()
			curLen = 0
		}
	}

	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		if wordLen > width {
			word = truncateRunes(word, width)
			wordLen = width
		}
		if curLen > 0 && curLen+1+wordLen > width {
			flush()
		}
		if curLen > 0 {
			current.WriteByte(' ')
			curLen++
		}
		current.WriteString(word)
		curLen += wordLen
	}
	flush()
	return lines
}

// wrapDialogue переносит реплику и следит, чтобы ни одна строка-продолжение
// при повторном разборе не стала сценой, переходом, ремаркой или именем персонажа.
// Такое начало строки остается на предыдущей строке, даже если та станет длиннее width.
func wrapDialogue(text string, width int) []string {
	chunks := wrapWords(text, width)
	i := 0
	for len(chunks) > 1 && i < len(chunks) {
		if keepsDialogueClass(chunks[i]) {
			i++
			continue
		}
		to, from := i-1, i
		if i == 0 {
			to, from = 0, 1
		}
		word, rest := splitFirstWord(chunks[from])
		chunks[to] += " " + word
		if rest == "" {
			chunks = append(chunks[:from], chunks[from+1:]...)
		} else {
			chunks[from] = rest
		}
		// выросшая строка могла стать переходом или именем
		i = to
	}
	return chunks
}

func keepsDialogueClass(chunk string) bool {
	return !isSceneHeading(chunk) && !isTransition(chunk) && !isParenthetical(chunk) && !isCueShaped(chunk)
}

func splitFirstWord(s string) (string, string) {
	word, rest, _ := strings.Cut(s, " ")
	return word, rest
}

func truncateRunes(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
