package compare

import (
	"strings"
	"sync"
	"unicode"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
)

// wordSplitter cuts a block of text into word, space and punctuation runs. If
// a lexer is known for the file, its token boundaries are honoured as well, so
// a string literal never merges with the identifier next to it.
type wordSplitter struct {
	fileName string

	once  sync.Once
	lexer chroma.Lexer
}

func newWordSplitter(fileName string) *wordSplitter {
	return &wordSplitter{fileName: fileName}
}

func (w *wordSplitter) split(text string) []string {
	if text == "" {
		return nil
	}
	if w == nil || w.fileName == "" {
		return splitWords(text)
	}
	w.once.Do(func() {
		l := lexers.Match(w.fileName)
		if l == nil {
			l = lexers.Analyse(text)
		}
		if l == nil {
			l = lexers.Fallback
		}
		w.lexer = chroma.Coalesce(l)
	})

	it, err := w.lexer.Tokenise(nil, text)
	if err != nil {
		return splitWords(text)
	}
	var out []string
	var sb strings.Builder
	for _, tok := range it.Tokens() {
		sb.WriteString(tok.Value)
		out = append(out, splitWords(tok.Value)...)
	}
	// Lexers may append a final newline; anything else means the tokens do not
	// cover the text and cannot be trusted for offsets.
	got := sb.String()
	if got == text+"\n" && len(out) > 0 && strings.HasSuffix(out[len(out)-1], "\n") {
		last := strings.TrimSuffix(out[len(out)-1], "\n")
		if last == "" {
			out = out[:len(out)-1]
		} else {
			out[len(out)-1] = last
		}
		got = text
	}
	if got != text {
		return splitWords(text)
	}
	return out
}

type runClass int

const (
	classWord runClass = iota
	classSpace
	classPunct
)

func classify(r rune) runClass {
	switch {
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return classWord
	case unicode.IsSpace(r):
		return classSpace
	default:
		return classPunct
	}
}

// splitWords groups letters and digits into words, whitespace into runs and
// emits every other character on its own.
func splitWords(text string) []string {
	var out []string
	start := -1
	var cur runClass
	for i, r := range text {
		c := classify(r)
		if start >= 0 && (c != cur || c == classPunct) {
			out = append(out, text[start:i])
			start = -1
		}
		if start < 0 {
			start = i
			cur = c
		}
	}
	if start >= 0 {
		out = append(out, text[start:])
	}
	return out
}
