package pdf

import (
	"bytes"
	"io"
)

// Stack is the operand stack Interpret hands each content-stream operator:
// values are pushed as they're parsed and handed to the callback in order
// the moment an operator keyword is hit, then cleared for the next one.
type Stack struct {
	v []Value
}

func (s *Stack) Push(v Value) { s.v = append(s.v, v) }

func (s *Stack) Pop() Value {
	n := len(s.v)
	if n == 0 {
		return Value{}
	}
	v := s.v[n-1]
	s.v = s.v[:n-1]
	return v
}

func (s *Stack) Len() int { return len(s.v) }

func (s *Stack) Clear() { s.v = s.v[:0] }

// Interpret tokenizes a page or form XObject's content stream (or, for a
// /Contents array, each stream concatenated with an intervening newline
// per the spec) and calls do once per operator with the operands that
// preceded it still on the stack.
func Interpret(strm Value, do func(stk *Stack, op string)) {
	switch strm.Kind() {
	case Stream:
		data, err := readAllValue(strm)
		if err != nil {
			return
		}
		interpretBytes(data, do)
	case Array:
		var buf bytes.Buffer
		for i := 0; i < strm.Len(); i++ {
			data, err := readAllValue(strm.Index(i))
			if err != nil {
				continue
			}
			buf.Write(data)
			buf.WriteByte('\n')
		}
		interpretBytes(buf.Bytes(), do)
	}
}

func readAllValue(v Value) ([]byte, error) {
	rc := v.Reader()
	if rc == nil {
		return nil, ErrNoContent
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func interpretBytes(data []byte, do func(stk *Stack, op string)) {
	b := newBuffer(bytes.NewReader(data), 0)
	defer PutPDFBuffer(b)
	b.allowEOF = true

	var stk Stack
	for {
		tok := b.readToken()
		if tok == nil || tok == token(io.EOF) {
			return
		}
		kw, isKeyword := tok.(keyword)
		if !isKeyword {
			stk.Push(valueOf(tok))
			continue
		}
		switch kw {
		case "<<":
			stk.Push(valueOf(b.readDict()))
		case "[":
			stk.Push(valueOf(b.readArray()))
		case "]", ">>", "{", "}":
			// stray closing delimiter with no matching open - ignore
		case "true":
			stk.Push(valueOf(true))
		case "false":
			stk.Push(valueOf(false))
		case "null":
			stk.Push(Value{})
		case "BI":
			skipInlineImage(b)
			stk.Clear()
		default:
			do(&stk, string(kw))
			stk.Clear()
		}
	}
}

func valueOf(x interface{}) Value {
	return Value{nil, objptr{}, x}
}

// skipInlineImage consumes a BI ... ID <binary> EI inline-image operator
// wholesale: the dictionary between BI/ID is of marginal value without a
// Device that wants raw sample bytes, which inline images rarely carry
// enough information to decode safely without a length hint anyway.
func skipInlineImage(b *buffer) {
	for {
		tok := b.readToken()
		if tok == nil || tok == token(io.EOF) {
			return
		}
		if kw, ok := tok.(keyword); ok && kw == "ID" {
			break
		}
	}
	// Binary data follows ID up to whitespace+EI; scan byte-by-byte since
	// the data may contain anything, including byte sequences that look
	// like tokens.
	prevSpace := false
	for {
		c := b.readByte()
		if b.eof {
			return
		}
		if prevSpace && c == 'E' {
			c2 := b.readByte()
			if c2 == 'I' {
				return
			}
			b.unreadByte()
		}
		prevSpace = isSpace(c)
	}
}
