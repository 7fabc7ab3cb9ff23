package lisp

import (
	"sort"
	"strings"
	"unicode"
)

var mungeTable = map[rune]string{
	'-':  "_",
	'.':  "_DOT_",
	':':  "_COLON_",
	'+':  "_PLUS_",
	'>':  "_GT_",
	'<':  "_LT_",
	'=':  "_EQ_",
	'~':  "_TILDE_",
	'!':  "_BANG_",
	'@':  "_CIRCA_",
	'#':  "_SHARP_",
	'\'': "_SINGLEQUOTE_",
	'"':  "_DOUBLEQUOTE_",
	'%':  "_PERCENT_",
	'^':  "_CARET_",
	'&':  "_AMPERSAND_",
	'*':  "_STAR_",
	'|':  "_BAR_",
	'{':  "_LBRACE_",
	'}':  "_RBRACE_",
	'[':  "_LBRACK_",
	']':  "_RBRACK_",
	'/':  "_SLASH_",
	'\\': "_BSLASH_",
	'?':  "_QMARK_",
}

// demungeTokens holds the multi-character munge tokens, longest first.
var demungeTokens = func() []string {
	var toks []string
	for _, tok := range mungeTable {
		if len(tok) > 1 {
			toks = append(toks, tok)
		}
	}
	sort.Slice(toks, func(i, j int) bool {
		if len(toks[i]) != len(toks[j]) {
			return len(toks[i]) > len(toks[j])
		}
		return toks[i] < toks[j]
	})
	return toks
}()

var demungeTable = func() map[string]rune {
	m := make(map[string]rune, len(mungeTable))
	for r, tok := range mungeTable {
		m[tok] = r
	}
	return m
}()

// Munge rewrites a hosted symbol name into a legal identifier:
// "list*" becomes "list_STAR_" and "str-join" becomes "str_join".
func Munge(name string) string {
	var b strings.Builder
	for _, r := range name {
		if tok, ok := mungeTable[r]; ok {
			b.WriteString(tok)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Demunge reverses Munge. Bare underscores become hyphens, so both
// "str_join" and a munged "list_STAR_" map back to hosted names.
func Demunge(name string) string {
	var b strings.Builder
	for i := 0; i < len(name); {
		if name[i] != '_' {
			b.WriteByte(name[i])
			i++
			continue
		}
		matched := false
		for _, tok := range demungeTokens {
			if strings.HasPrefix(name[i:], tok) {
				b.WriteRune(demungeTable[tok])
				i += len(tok)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte('-')
			i++
		}
	}
	return b.String()
}

// IsIdentifier reports whether s is a legal identifier of the calling
// language: a letter or underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || unicode.IsLetter(r):
		case i > 0 && unicode.IsDigit(r):
		default:
			return false
		}
	}
	return true
}
