package lisp

import (
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Reader reads forms from source text one at a time.
type Reader struct {
	src   []rune
	pos   int
	line  int
	col   int
	depth int
}

// MaxReadDepth bounds the nesting of collections and quotes in source text.
const MaxReadDepth = 10000

// NewReader returns a reader positioned at the start of src.
func NewReader(src string) *Reader {
	return &Reader{src: []rune(src), line: 1, col: 1}
}

// ReadString reads the first form of src.
func ReadString(src string) (any, error) {
	r := NewReader(src)
	form, err := r.Read()
	if err == io.EOF {
		return nil, &ReadError{Line: r.line, Column: r.col, Msg: "EOF while reading"}
	}
	return form, err
}

// ReadAll reads every form of src.
func ReadAll(src string) ([]any, error) {
	r := NewReader(src)
	var forms []any
	for {
		form, err := r.Read()
		if err == io.EOF {
			return forms, nil
		}
		if err != nil {
			return nil, err
		}
		forms = append(forms, form)
	}
}

// Read returns the next form, or io.EOF when only whitespace and comments
// remain.
func (r *Reader) Read() (any, error) {
	r.skip()
	if r.pos >= len(r.src) {
		return nil, io.EOF
	}
	return r.readForm()
}

func (r *Reader) peek() (rune, bool) {
	if r.pos >= len(r.src) {
		return 0, false
	}
	return r.src[r.pos], true
}

func (r *Reader) next() rune {
	c := r.src[r.pos]
	r.pos++
	if c == '\n' {
		r.line++
		r.col = 1
	} else {
		r.col++
	}
	return c
}

func (r *Reader) skip() {
	for r.pos < len(r.src) {
		c := r.src[r.pos]
		switch {
		case unicode.IsSpace(c) || c == ',':
			r.next()
		case c == ';':
			for r.pos < len(r.src) && r.src[r.pos] != '\n' {
				r.next()
			}
		default:
			return
		}
	}
}

func (r *Reader) errorf(line, col int, format string, args ...any) *ReadError {
	return &ReadError{Line: line, Column: col, Msg: fmt.Sprintf(format, args...)}
}

func isDelimiter(c rune) bool {
	return unicode.IsSpace(c) || strings.ContainsRune(`,()[]{}";'`, c)
}

func (r *Reader) readForm() (any, error) {
	r.skip()
	line, col := r.line, r.col
	r.depth++
	defer func() { r.depth-- }()
	if r.depth > MaxReadDepth {
		return nil, r.errorf(line, col, "Forms nested deeper than %d", MaxReadDepth)
	}
	c, ok := r.peek()
	if !ok {
		return nil, r.errorf(line, col, "EOF while reading")
	}
	switch c {
	case '(':
		r.next()
		items, err := r.readDelimited(')', line, col)
		if err != nil {
			return nil, err
		}
		return List(items), nil
	case '[':
		r.next()
		items, err := r.readDelimited(']', line, col)
		if err != nil {
			return nil, err
		}
		return Vector(items), nil
	case '{':
		r.next()
		items, err := r.readDelimited('}', line, col)
		if err != nil {
			return nil, err
		}
		if len(items)%2 != 0 {
			return nil, r.errorf(line, col, "Map literal must contain an even number of forms")
		}
		return MapOf(items...), nil
	case ')', ']', '}':
		r.next()
		return nil, r.errorf(line, col, "Unmatched delimiter: %c", c)
	case '\'':
		r.next()
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		return List{Symbol{Name: "quote"}, form}, nil
	case '"':
		r.next()
		return r.readString(line, col)
	case '\\':
		r.next()
		return r.readChar(line, col)
	case '#':
		r.next()
		if c, ok := r.peek(); ok && c == '"' {
			r.next()
			return r.readRegex(line, col)
		}
		return nil, r.errorf(line, col, "No dispatch macro for: #%s", r.readToken())
	case ':':
		r.next()
		tok := r.readToken()
		if tok == "" {
			return nil, r.errorf(line, col, "Invalid token: :")
		}
		return Keyword(tok), nil
	}

	tok := r.readToken()
	if startsNumber(tok) {
		return parseNumber(tok, func() error {
			return r.errorf(line, col, "Invalid number: %s", tok)
		})
	}
	switch tok {
	case "nil":
		return nil, nil
	case "true":
		return true, nil
	case "false":
		return false, nil
	}
	return Sym(tok), nil
}

func (r *Reader) readDelimited(close rune, line, col int) ([]any, error) {
	var items []any
	for {
		r.skip()
		c, ok := r.peek()
		if !ok {
			return nil, r.errorf(line, col, "EOF while reading, starting at line %d", line)
		}
		if c == close {
			r.next()
			return items, nil
		}
		form, err := r.readForm()
		if err != nil {
			return nil, err
		}
		items = append(items, form)
	}
}

func (r *Reader) readToken() string {
	start := r.pos
	for r.pos < len(r.src) && !isDelimiter(r.src[r.pos]) {
		r.next()
	}
	return string(r.src[start:r.pos])
}

func (r *Reader) readString(line, col int) (any, error) {
	var b strings.Builder
	for {
		c, ok := r.peek()
		if !ok {
			return nil, r.errorf(line, col, "EOF while reading string")
		}
		r.next()
		switch c {
		case '"':
			return b.String(), nil
		case '\\':
			e, ok := r.peek()
			if !ok {
				return nil, r.errorf(line, col, "EOF while reading string")
			}
			r.next()
			switch e {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case 'r':
				b.WriteByte('\r')
			case 'b':
				b.WriteByte('\b')
			case 'f':
				b.WriteByte('\f')
			case '"', '\\':
				b.WriteRune(e)
			case 'u':
				if r.pos+4 > len(r.src) {
					return nil, r.errorf(r.line, r.col, "Invalid unicode escape")
				}
				code, err := strconv.ParseUint(string(r.src[r.pos:r.pos+4]), 16, 32)
				if err != nil {
					return nil, r.errorf(r.line, r.col, "Invalid unicode escape: \\u%s", string(r.src[r.pos:r.pos+4]))
				}
				for range 4 {
					r.next()
				}
				b.WriteRune(rune(code))
			default:
				return nil, r.errorf(r.line, r.col, "Unsupported escape character: \\%c", e)
			}
		default:
			b.WriteRune(c)
		}
	}
}

func (r *Reader) readChar(line, col int) (any, error) {
	c, ok := r.peek()
	if !ok {
		return nil, r.errorf(line, col, "EOF while reading character")
	}
	r.next()
	rest := r.readToken()
	if rest == "" {
		return Char(c), nil
	}
	tok := string(c) + rest
	for ch, name := range charNames {
		if name == tok {
			return ch, nil
		}
	}
	if c == 'u' && len(rest) == 4 {
		if code, err := strconv.ParseUint(rest, 16, 32); err == nil {
			return Char(rune(code)), nil
		}
	}
	return nil, r.errorf(line, col, "Unsupported character: \\%s", tok)
}

func (r *Reader) readRegex(line, col int) (any, error) {
	var b strings.Builder
	for {
		c, ok := r.peek()
		if !ok {
			return nil, r.errorf(line, col, "EOF while reading regex")
		}
		r.next()
		if c == '"' {
			break
		}
		b.WriteRune(c)
		if c == '\\' {
			if e, ok := r.peek(); ok {
				r.next()
				b.WriteRune(e)
			}
		}
	}
	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, r.errorf(line, col, "Invalid regex: %v", err)
	}
	return re, nil
}

func startsNumber(tok string) bool {
	if tok == "" {
		return false
	}
	c := tok[0]
	if c >= '0' && c <= '9' {
		return true
	}
	return (c == '+' || c == '-') && len(tok) > 1 && tok[1] >= '0' && tok[1] <= '9'
}

func parseNumber(tok string, invalid func() error) (any, error) {
	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return n, nil
	}
	if strings.ContainsAny(tok, "xX_") {
		return nil, invalid()
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f, nil
	}
	return nil, invalid()
}
