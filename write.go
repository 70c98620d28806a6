package pdf

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
)

// WriteIncrementalUpdate appends d's tracked edits to w as a PDF
// incremental update (ISO 32000-1 7.5.6): each modified or newly added
// object is serialized, followed by a hybrid xref table covering every
// touched object number (deletions included) and a trailer chaining back
// to r's own xref via /Prev. The result is only valid appended directly
// after the bytes r was opened from; w itself is not repositioned or
// truncated.
//
// baseOffset is the byte length of the original file, i.e. the offset at
// which the update begins; callers writing to the same file r was opened
// from should pass r.Size().
func WriteIncrementalUpdate(w io.Writer, r *Reader, d *DeltaLayer, baseOffset int64) error {
	changes := d.changes()
	if len(changes) == 0 {
		return nil
	}

	cw := &countingWriter{w: w, offset: baseOffset}
	offsets := make(map[uint32]int64, len(changes))

	for _, c := range changes {
		if c.deleted {
			continue
		}
		offsets[c.num] = cw.offset
		if err := writeObjectDef(cw, c.num, c.generation, c.obj); err != nil {
			return err
		}
	}

	xrefOffset := cw.offset
	if err := writeXref(cw, changes, offsets); err != nil {
		return err
	}

	size := d.NextObjNum()
	if uint32(r.NumObjects()) > size {
		size = uint32(r.NumObjects())
	}
	root, hasRoot := r.trailer["Root"]

	if err := writeTrailer(cw, size, r.PrevXrefOffset(), root, hasRoot); err != nil {
		return err
	}
	_, err := fmt.Fprintf(cw, "startxref\n%d\n%%%%EOF\n", xrefOffset)
	return err
}

type countingWriter struct {
	w      io.Writer
	offset int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.offset += int64(n)
	return n, err
}

func writeObjectDef(w io.Writer, num uint32, gen uint16, obj object) error {
	if _, err := fmt.Fprintf(w, "%d %d obj\n", num, gen); err != nil {
		return err
	}
	if err := writeObject(w, obj); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendobj\n")
	return err
}

// writeObject serializes a single PDF object per the literal syntax rules:
// numbers print without a fractional part when they have none, strings use
// parenthesized-literal escaping, names use #HH escaping, and streams carry
// their dictionary immediately followed by their raw bytes.
func writeObject(w io.Writer, obj object) error {
	switch x := obj.(type) {
	case nil:
		_, err := io.WriteString(w, "null")
		return err
	case bool:
		if x {
			_, err := io.WriteString(w, "true")
			return err
		}
		_, err := io.WriteString(w, "false")
		return err
	case int64:
		_, err := io.WriteString(w, strconv.FormatInt(x, 10))
		return err
	case float64:
		return writeNumber(w, x)
	case string:
		return writeLiteralString(w, x)
	case hexString:
		return writeHexString(w, x)
	case name:
		return writeName(w, x)
	case array:
		return writeArray(w, x)
	case dict:
		return writeDict(w, x)
	case objptr:
		_, err := fmt.Fprintf(w, "%d %d R", x.id, x.gen)
		return err
	case ObjectRef:
		_, err := fmt.Fprintf(w, "%d %d R", x.Num, x.Generation)
		return err
	case *DeltaStream:
		return writeStream(w, x)
	default:
		return &Generic{Msg: fmt.Sprintf("pdf: object of type %T is not representable in an incremental update", obj)}
	}
}

func writeNumber(w io.Writer, f float64) error {
	if f == float64(int64(f)) {
		_, err := io.WriteString(w, strconv.FormatInt(int64(f), 10))
		return err
	}
	_, err := io.WriteString(w, strconv.FormatFloat(f, 'f', -1, 64))
	return err
}

func writeLiteralString(w io.Writer, s string) error {
	var buf bytes.Buffer
	buf.WriteByte('(')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '(', ')':
			buf.WriteByte('\\')
			buf.WriteByte(c)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			buf.WriteByte(c)
		}
	}
	buf.WriteByte(')')
	_, err := w.Write(buf.Bytes())
	return err
}

// writeHexString serializes a hex-string token as <HHHH...>, uppercase,
// preserving the lexical form it was read in rather than collapsing it to
// writeLiteralString's parenthesized escaping.
func writeHexString(w io.Writer, s hexString) error {
	var buf bytes.Buffer
	buf.WriteByte('<')
	buf.WriteString(strings.ToUpper(hex.EncodeToString([]byte(s))))
	buf.WriteByte('>')
	_, err := w.Write(buf.Bytes())
	return err
}

func isNameEscaped(c byte) bool {
	switch c {
	case '/', '(', ')', '<', '>', '[', ']', '{', '}', '%', '#', ' ':
		return true
	}
	return c < 0x21 || c > 0x7e
}

func writeName(w io.Writer, n name) error {
	var buf bytes.Buffer
	buf.WriteByte('/')
	for i := 0; i < len(n); i++ {
		c := n[i]
		if isNameEscaped(c) {
			fmt.Fprintf(&buf, "#%02X", c)
		} else {
			buf.WriteByte(c)
		}
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func writeArray(w io.Writer, a array) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, elem := range a {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
		if err := writeObject(w, elem); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}

func writeDict(w io.Writer, d dict) error {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, string(k))
	}
	sort.Strings(keys)

	if _, err := io.WriteString(w, "<<"); err != nil {
		return err
	}
	for i, k := range keys {
		if i > 0 {
			if _, err := io.WriteString(w, " "); err != nil {
				return err
			}
		}
		if err := writeName(w, name(k)); err != nil {
			return err
		}
		if _, err := io.WriteString(w, " "); err != nil {
			return err
		}
		if err := writeObject(w, d[name(k)]); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, ">>")
	return err
}

func writeStream(w io.Writer, s *DeltaStream) error {
	hdr := make(dict, len(s.Dict)+1)
	for k, v := range s.Dict {
		hdr[k] = v
	}
	hdr["Length"] = int64(len(s.Data))

	if err := writeDict(w, hdr); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\nstream\n"); err != nil {
		return err
	}
	if _, err := w.Write(s.Data); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\nendstream")
	return err
}

// writeXref emits a classic (table-form) xref section covering every
// touched object number, grouping consecutive numbers into subsections as
// real PDF writers do.
func writeXref(w io.Writer, changes []deltaChange, offsets map[uint32]int64) error {
	if _, err := io.WriteString(w, "xref\n"); err != nil {
		return err
	}

	i := 0
	for i < len(changes) {
		j := i + 1
		for j < len(changes) && changes[j].num == changes[j-1].num+1 {
			j++
		}
		if _, err := fmt.Fprintf(w, "%d %d\n", changes[i].num, j-i); err != nil {
			return err
		}
		for _, c := range changes[i:j] {
			if c.deleted {
				if _, err := fmt.Fprintf(w, "%010d %05d f \n", 0, c.generation); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "%010d %05d n \n", offsets[c.num], c.generation); err != nil {
				return err
			}
		}
		i = j
	}
	return nil
}

func writeTrailer(w io.Writer, size uint32, prev int64, root object, hasRoot bool) error {
	t := dict{"Size": int64(size)}
	if prev > 0 {
		t["Prev"] = int64(prev)
	}
	if hasRoot {
		t["Root"] = root
	}
	if _, err := io.WriteString(w, "trailer\n"); err != nil {
		return err
	}
	if err := writeDict(w, t); err != nil {
		return err
	}
	_, err := io.WriteString(w, "\n")
	return err
}
