package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
)

// ApplyKeys feeds simulated key presses to m. Each token may mix <Key>
// forms such as <Enter>, <Esc>, <Space>, <Down> or <C-c> with literal text;
// a leading backslash makes the whole token literal.
func ApplyKeys(m *Model, tokens []string) {
	if m == nil {
		return
	}
	for _, msg := range KeyMsgs(tokens) {
		m.Update(msg)
	}
}

// KeyMsgs converts tokens into key press messages. Unknown <...> forms are
// typed literally.
func KeyMsgs(tokens []string) []tea.KeyPressMsg {
	var out []tea.KeyPressMsg
	for _, raw := range tokens {
		token := strings.TrimSpace(raw)
		if token == "" {
			continue
		}
		if strings.HasPrefix(token, `\`) {
			out = append(out, literalKeys(strings.TrimPrefix(token, `\`))...)
			continue
		}
		for _, seg := range splitKeyTokens(token) {
			if !seg.special {
				out = append(out, literalKeys(seg.text)...)
				continue
			}
			if msg, ok := keyFromName(seg.text); ok {
				out = append(out, msg)
			} else {
				out = append(out, literalKeys(seg.text)...)
			}
		}
	}
	return out
}

func literalKeys(text string) []tea.KeyPressMsg {
	out := make([]tea.KeyPressMsg, 0, len(text))
	for _, r := range text {
		out = append(out, tea.KeyPressMsg{Code: r, Text: string(r)})
	}
	return out
}

type keySegment struct {
	text    string
	special bool
}

// splitKeyTokens splits "<Down>abc<Enter>" into special and literal parts.
func splitKeyTokens(token string) []keySegment {
	var segs []keySegment
	rest := token
	for rest != "" {
		start := strings.Index(rest, "<")
		if start == -1 {
			segs = append(segs, keySegment{text: rest})
			break
		}
		end := strings.Index(rest[start:], ">")
		if end == -1 {
			segs = append(segs, keySegment{text: rest})
			break
		}
		if start > 0 {
			segs = append(segs, keySegment{text: rest[:start]})
		}
		segs = append(segs, keySegment{text: rest[start : start+end+1], special: true})
		rest = rest[start+end+1:]
	}
	return segs
}

func keyFromName(token string) (tea.KeyPressMsg, bool) {
	inner := strings.ToLower(strings.TrimSuffix(strings.TrimPrefix(token, "<"), ">"))
	switch inner {
	case "esc", "escape", "c-[":
		return tea.KeyPressMsg{Code: tea.KeyEscape}, true
	case "cr", "enter", "return":
		return tea.KeyPressMsg{Code: tea.KeyEnter}, true
	case "tab":
		return tea.KeyPressMsg{Code: tea.KeyTab}, true
	case "space":
		return tea.KeyPressMsg{Code: tea.KeySpace, Text: " "}, true
	case "bs", "backspace":
		return tea.KeyPressMsg{Code: tea.KeyBackspace}, true
	case "up":
		return tea.KeyPressMsg{Code: tea.KeyUp}, true
	case "down":
		return tea.KeyPressMsg{Code: tea.KeyDown}, true
	case "left":
		return tea.KeyPressMsg{Code: tea.KeyLeft}, true
	case "right":
		return tea.KeyPressMsg{Code: tea.KeyRight}, true
	case "home":
		return tea.KeyPressMsg{Code: tea.KeyHome}, true
	case "end":
		return tea.KeyPressMsg{Code: tea.KeyEnd}, true
	case "pgup":
		return tea.KeyPressMsg{Code: tea.KeyPgUp}, true
	case "pgdown":
		return tea.KeyPressMsg{Code: tea.KeyPgDown}, true
	}
	if rest, ok := strings.CutPrefix(inner, "c-"); ok && len(rest) == 1 {
		return tea.KeyPressMsg{Code: rune(rest[0]), Mod: tea.ModCtrl}, true
	}
	return tea.KeyPressMsg{}, false
}
