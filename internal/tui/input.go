package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in a form input.
const maxInputLen = 256

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}

// field is one line of a form.
type field struct {
	label       string
	placeholder string
	value       string
	secret      bool
}

// form is an ordered set of fields with one focused.
type form struct {
	fields []field
	focus  int
}

func newForm(fields ...field) form {
	return form{fields: fields}
}

func (f *form) next() { f.focus = (f.focus + 1) % len(f.fields) }
func (f *form) prev() { f.focus = (f.focus - 1 + len(f.fields)) % len(f.fields) }

func (f form) value(i int) string { return f.fields[i].value }

func (f *form) set(i int, v string) { f.fields[i].value = v }

func (f form) last() bool { return f.focus == len(f.fields)-1 }

// edit applies a keystroke to the focused field.
func (f *form) edit(key string) {
	fl := &f.fields[f.focus]
	fl.value = editRune(fl.value, key)
}

// handleKey moves focus on tab/arrows and edits the focused field otherwise.
func (f *form) handleKey(key string) {
	switch key {
	case "tab", "down":
		f.next()
	case "shift+tab", "up":
		f.prev()
	default:
		f.edit(key)
	}
}

// render draws the form; the cursor blinks on the focused field.
func (f form) render(frame int) string {
	var b strings.Builder
	width := 0
	for _, fl := range f.fields {
		if w := utf8.RuneCountInString(fl.label); w > width {
			width = w
		}
	}
	for i, fl := range f.fields {
		label := fl.label + strings.Repeat(" ", width-utf8.RuneCountInString(fl.label))
		shown := fl.value
		if fl.secret {
			shown = strings.Repeat("•", utf8.RuneCountInString(fl.value))
		}
		prompt := "  "
		style := metaStyle
		if i == f.focus {
			prompt = inputPromptStyle.Render("> ")
			style = selectedStyle
		}
		line := prompt + style.Render(label) + "  "
		switch {
		case shown == "" && i != f.focus:
			line += inputPlaceholderStyle.Render(fl.placeholder)
		case i == f.focus:
			cursor := " "
			if (frame/6)%2 == 0 {
				cursor = accentStyle.Render("█")
			}
			line += normalStyle.Render(shown) + cursor
		default:
			line += normalStyle.Render(shown)
		}
		b.WriteString(line + "\n")
	}
	return b.String()
}
