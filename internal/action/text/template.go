package text

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"

	"stringact/internal/action"
)

// translateTemplate rewrites a replacement written with Java conventions
// into regexp2 substitution syntax:
//
//	$n      group n; further digits are taken while the group exists
//	${name} named group
//	\c      the literal character c
//
// Every other character is literal. Group references are checked against re.
func translateTemplate(repl string, re *regexp2.Regexp) (string, error) {
	groups := maxGroup(re)

	var sb strings.Builder
	sb.Grow(len(repl))
	for i := 0; i < len(repl); i++ {
		c := repl[i]
		switch c {
		case '\\':
			i++
			if i >= len(repl) {
				return "", fmt.Errorf("%w: replacement ends with an escape character", action.ErrPatternSyntax)
			}
			writeLiteral(&sb, repl[i])

		case '$':
			i++
			if i >= len(repl) {
				return "", fmt.Errorf("%w: replacement ends with '$'", action.ErrPatternSyntax)
			}
			if repl[i] == '{' {
				end := strings.IndexByte(repl[i:], '}')
				if end < 0 {
					return "", fmt.Errorf("%w: unterminated group name in replacement", action.ErrPatternSyntax)
				}
				name := repl[i+1 : i+end]
				if !validGroupName(name) {
					return "", fmt.Errorf("%w: invalid group name %q in replacement", action.ErrPatternSyntax, name)
				}
				if re.GroupNumberFromName(name) < 0 {
					return "", fmt.Errorf("%w: no group named %q", action.ErrPatternSyntax, name)
				}
				sb.WriteString("${" + name + "}")
				i += end
				continue
			}
			if !isDigit(repl[i]) {
				return "", fmt.Errorf("%w: illegal group reference '$%c'", action.ErrPatternSyntax, repl[i])
			}
			ref := int(repl[i] - '0')
			if ref > groups {
				return "", fmt.Errorf("%w: no group %d", action.ErrPatternSyntax, ref)
			}
			for i+1 < len(repl) && isDigit(repl[i+1]) {
				next := ref*10 + int(repl[i+1]-'0')
				if next > groups {
					break
				}
				ref = next
				i++
			}
			sb.WriteString("${" + strconv.Itoa(ref) + "}")

		default:
			writeLiteral(&sb, c)
		}
	}
	return sb.String(), nil
}

// writeLiteral emits c so that regexp2 substitutes it verbatim.
func writeLiteral(sb *strings.Builder, c byte) {
	if c == '$' {
		sb.WriteString("$$")
		return
	}
	sb.WriteByte(c)
}

func maxGroup(re *regexp2.Regexp) int {
	n := 0
	for _, g := range re.GetGroupNumbers() {
		if g > n {
			n = g
		}
	}
	return n
}

func validGroupName(name string) bool {
	if name == "" || !isLetter(name[0]) {
		return false
	}
	for i := 1; i < len(name); i++ {
		if !isLetter(name[i]) && !isDigit(name[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool  { return c >= '0' && c <= '9' }
func isLetter(c byte) bool { return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') }
