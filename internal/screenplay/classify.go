package screenplay

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LineClass - класс строки сценария.
type LineClass int

const (
	Blank LineClass = iota
	SceneHeading
	Transition
	CharacterCue
	Parenthetical
	Dialogue
	Action
)

func (c LineClass) String() string {
	switch c {
	case Blank:
		return "blank"
	case SceneHeading:
		return "scene_heading"
	case Transition:
		return "transition"
	case CharacterCue:
		return "character_cue"
	case Parenthetical:
		return "parenthetical"
	case Dialogue:
		return "dialogue"
	case Action:
		return "action"
	}
	return "unknown"
}

// ScriptLine - строка входа с назначенным классом.
type ScriptLine struct {
	Raw               string
	Text              string // Raw без пробелов по краям
	LeadingWhitespace int
	Class             LineClass
}

const (
	maxCueLength   = 50 // имя персонажа строго короче
	cueLookahead   = 3
	maxSkipBlanks  = 1
	dialogueLookup = 2
)

var (
	sceneHeadingRe = regexp.MustCompile(`(?i)^(INT\.|EXT\.)`)
	transitionRe   = regexp.MustCompile(`(?i)^(FADE IN|FADE OUT|FADE TO BLACK|CUT TO|DISSOLVE TO|SMASH CUT(\s+TO)?|MATCH CUT(\s+TO)?)\s*[:.]?$`)
	cueExtensionRe = regexp.MustCompile(`\s*\((CONT'D|V\.O\.|O\.S\.|O\.C\.)\)$`)
)

func isSceneHeading(t string) bool { return sceneHeadingRe.MatchString(t) }

func isTransition(t string) bool { return transitionRe.MatchString(t) }

func isParenthetical(t string) bool { return strings.HasPrefix(t, "(") }

func hasLower(t string) bool {
	for _, r := range t {
		if unicode.IsLower(r) {
			return true
		}
	}
	return false
}

// isCueShaped: без строчных букв, хотя бы одна буква, короче maxCueLength,
// точка допускается только последним символом имени, расширение (V.O.) и т.п. необязательно.
func isCueShaped(t string) bool {
	if utf8.RuneCountInString(t) >= maxCueLength || hasLower(t) {
		return false
	}
	name := []rune(strings.TrimSpace(cueExtensionRe.ReplaceAllString(t, "")))
	if len(name) == 0 {
		return false
	}
	letters := 0
	for i, r := range name {
		switch {
		case unicode.IsLetter(r):
			letters++
		case unicode.IsDigit(r), r == ' ', r == '\'', r == '-', r == '&', r == '#':
		case r == '.':
			if i != len(name)-1 {
				return false
			}
		default:
			return false
		}
	}
	return letters > 0
}

// isDialogueShaped: строка похожа на речь - есть строчные буквы или характерное окончание.
func isDialogueShaped(t string) bool {
	if isSceneHeading(t) || isTransition(t) {
		return false
	}
	if hasLower(t) {
		return true
	}
	last, _ := utf8.DecodeLastRuneInString(t)
	switch last {
	case '.', '!', '?', '…', '-':
		return true
	}
	return false
}

func leadingWhitespace(raw string) int {
	n := 0
	for _, r := range raw {
		if !unicode.IsSpace(r) {
			break
		}
		n++
	}
	return n
}

// Classify разбивает текст на строки и назначает каждой класс.
// Классы не зависят от ширины строки.
func Classify(text string) []ScriptLine {
	rawLines := strings.Split(text, "\n")
	lines := make([]ScriptLine, len(rawLines))
	for i, raw := range rawLines {
		lines[i] = ScriptLine{
			Raw:               raw,
			Text:              strings.TrimSpace(raw),
			LeadingWhitespace: leadingWhitespace(raw),
		}
	}

	for i := range lines {
		lines[i].Class = classifyAt(lines, i)
	}
	return lines
}

// classifyAt применяет правила по порядку, первое совпадение выигрывает.
// Классы предыдущих строк к этому моменту уже назначены.
func classifyAt(lines []ScriptLine, i int) LineClass {
	t := lines[i].Text
	switch {
	case t == "":
		return Blank
	case isSceneHeading(t):
		return SceneHeading
	case isTransition(t):
		return Transition
	case isCueShaped(t) && cueFollowedBySpeech(lines, i):
		return CharacterCue
	case isParenthetical(t):
		return Parenthetical
	case continuesDialogue(lines, i):
		return Dialogue
	}
	return Action
}

// cueFollowedBySpeech смотрит вперед до cueLookahead строк, пропуская не больше одной пустой.
func cueFollowedBySpeech(lines []ScriptLine, i int) bool {
	blanks := 0
	for j := i + 1; j < len(lines) && j <= i+cueLookahead; j++ {
		next := lines[j].Text
		if next == "" {
			blanks++
			if blanks > maxSkipBlanks {
				return false
			}
			continue
		}
		return isParenthetical(next) || isDialogueShaped(next)
	}
	return false
}

// continuesDialogue: сразу после реплики, ремарки или диалога.
// После реплики и ремарки допускается одна пустая строка, после диалога - нет.
func continuesDialogue(lines []ScriptLine, i int) bool {
	if i == 0 {
		return false
	}
	switch lines[i-1].Class {
	case CharacterCue, Parenthetical, Dialogue:
		return true
	case Blank:
		if i >= dialogueLookup {
			prev := lines[i-dialogueLookup].Class
			return prev == CharacterCue || prev == Parenthetical
		}
	}
	return false
}
