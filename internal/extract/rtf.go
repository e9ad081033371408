package extract

import (
	"context"
	"fmt"
	"strconv"
	"strings"
)

// Destinations whose contents are formatting tables or metadata, not text.
var rtfSkipDestinations = map[string]bool{
	"fonttbl": true, "colortbl": true, "stylesheet": true, "info": true,
	"pict": true, "header": true, "footer": true, "footnote": true,
	"listtable": true, "listoverridetable": true, "generator": true,
	"themedata": true, "datastore": true, "latentstyles": true,
	"rsidtbl": true, "xmlnstbl": true, "object": true,
}

type rtfGroup struct {
	skip bool
}

// rtfText strips RTF control words and groups, keeping paragraph breaks and
// decoding \'hh and \uN escapes.
func rtfText(_ context.Context, data []byte) (string, error) {
	s := string(data)
	if !strings.HasPrefix(strings.TrimSpace(s), `{\rtf`) {
		return "", fmt.Errorf("%w: missing rtf header", ErrInvalidDocument)
	}

	var b strings.Builder
	stack := []rtfGroup{{}}
	fallback := 0 // characters still to drop after a \u escape

	emit := func(r rune) {
		if stack[len(stack)-1].skip {
			return
		}
		if fallback > 0 {
			fallback--
			return
		}
		b.WriteRune(r)
	}

	for i := 0; i < len(s); {
		c := s[i]
		switch c {
		case '{':
			stack = append(stack, stack[len(stack)-1])
			i++
		case '}':
			if len(stack) > 1 {
				stack = stack[:len(stack)-1]
			}
			i++
		case '\r', '\n':
			i++
		case '\\':
			i++
			if i >= len(s) {
				break
			}
			n := s[i]
			switch {
			case n == '\\' || n == '{' || n == '}':
				emit(rune(n))
				i++
			case n == '\'':
				if i+2 < len(s) {
					if v, err := strconv.ParseUint(s[i+1:i+3], 16, 8); err == nil {
						emit(rune(v))
					}
				}
				i += 3
			case n == '*':
				stack[len(stack)-1].skip = true
				i++
			case n == '~':
				emit(' ')
				i++
			case isASCIILetter(n):
				word, param, hasParam, next := readControlWord(s, i)
				i = next
				switch {
				case rtfSkipDestinations[word]:
					stack[len(stack)-1].skip = true
				case word == "par":
					if !stack[len(stack)-1].skip {
						b.WriteString("\n\n")
					}
				case word == "line":
					emit('\n')
				case word == "tab":
					emit('\t')
				case word == "u" && hasParam:
					if param < 0 {
						param += 65536
					}
					emit(rune(param))
					fallback = 1
				}
			default:
				i++
			}
		default:
			emit(rune(c))
			i++
		}
	}
	return b.String(), nil
}

// readControlWord parses a control word starting at s[i] (a letter) and
// returns the index just past its optional numeric parameter and delimiter.
func readControlWord(s string, i int) (word string, param int, hasParam bool, next int) {
	start := i
	for i < len(s) && isASCIILetter(s[i]) {
		i++
	}
	word = s[start:i]

	numStart := i
	if i < len(s) && s[i] == '-' {
		i++
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i > numStart {
		if v, err := strconv.Atoi(s[numStart:i]); err == nil {
			param, hasParam = v, true
		}
	}
	if i < len(s) && s[i] == ' ' {
		i++
	}
	return word, param, hasParam, i
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
