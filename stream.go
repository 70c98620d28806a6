package pdf

import "io"

// Stream is the byte-range abstraction every layer above it is built on:
// lexer, parser, xref, content interpreter. Reads beyond the bytes a
// concrete Stream currently holds return *MissingData instead of blocking
// or padding with zeros; callers run through withRetry so the fault gets
// satisfied and the read replayed.
//
// Position is per-Stream, not shared: MakeSubStream hands back a new
// Stream sharing the same backing storage (no copy) but with its own
// cursor and an origin offset into the parent.
type Stream interface {
	Length() int64
	Pos() int64
	SetPos(pos int64) error

	GetByte() (byte, error)
	PeekByte() (byte, error)
	GetBytes(n int) ([]byte, error)
	GetByteRange(begin, end int64) ([]byte, error)

	Reset()
	MoveStart(delta int64)
	MakeSubStream(start, length int64) Stream

	// EnsureRange is the hook the retry driver calls after catching a
	// *MissingData fault: synchronous streams treat it as a no-op (or an
	// immediate load), chunked network streams actually go fetch.
	EnsureRange(begin, end int64) error
}

// memoryStream is a Stream over a fully resident []byte. It never raises
// MissingData - every byte it could ever serve is already in memory. Used
// for in-memory documents, decoded filter output, and sub-streams carved
// out of a range a chunk manager has already guaranteed is loaded.
type memoryStream struct {
	data  []byte
	start int64 // offset of data[0] within the logical document, for error messages
	pos   int64 // cursor, relative to data[0]
}

// NewMemoryStream wraps an in-memory byte slice as a Stream.
func NewMemoryStream(data []byte) Stream {
	return &memoryStream{data: data}
}

func (s *memoryStream) Length() int64 { return int64(len(s.data)) }
func (s *memoryStream) Pos() int64    { return s.pos }

func (s *memoryStream) SetPos(pos int64) error {
	if pos < 0 || pos > int64(len(s.data)) {
		return &InvalidPosition{Pos: pos, Length: int64(len(s.data))}
	}
	s.pos = pos
	return nil
}

func (s *memoryStream) GetByte() (byte, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, &UnexpectedEndOfStream{Pos: s.start + s.pos}
	}
	b := s.data[s.pos]
	s.pos++
	return b, nil
}

func (s *memoryStream) PeekByte() (byte, error) {
	if s.pos >= int64(len(s.data)) {
		return 0, &UnexpectedEndOfStream{Pos: s.start + s.pos}
	}
	return s.data[s.pos], nil
}

func (s *memoryStream) GetBytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, &InvalidByteRange{Begin: s.pos, End: s.pos + int64(n)}
	}
	end := s.pos + int64(n)
	if end > int64(len(s.data)) {
		end = int64(len(s.data))
	}
	out := s.data[s.pos:end]
	s.pos = end
	return out, nil
}

func (s *memoryStream) GetByteRange(begin, end int64) ([]byte, error) {
	if begin < 0 || end < begin || end > int64(len(s.data)) {
		return nil, &InvalidByteRange{Begin: begin, End: end}
	}
	return s.data[begin:end], nil
}

func (s *memoryStream) Reset()                  { s.pos = 0 }
func (s *memoryStream) MoveStart(delta int64)    { s.data = s.data[delta:]; s.start += delta }

func (s *memoryStream) MakeSubStream(start, length int64) Stream {
	if start < 0 || length < 0 || start+length > int64(len(s.data)) {
		length = int64(len(s.data)) - start
		if length < 0 {
			length = 0
		}
	}
	return &memoryStream{data: s.data[start : start+length], start: s.start + start}
}

func (s *memoryStream) EnsureRange(begin, end int64) error { return nil }

// ReaderAtStream adapts an io.ReaderAt of known length (an *os.File, a
// bytes.Reader) into a Stream that never raises MissingData - synchronous
// local I/O is assumed always available, matching file_chunked_stream's
// behavior of essentially never faulting.
type ReaderAtStream struct {
	r      io.ReaderAt
	length int64
	pos    int64
	origin int64 // absolute offset of pos==0 within r
}

func NewReaderAtStream(r io.ReaderAt, length int64) *ReaderAtStream {
	return &ReaderAtStream{r: r, length: length}
}

func (s *ReaderAtStream) Length() int64 { return s.length }
func (s *ReaderAtStream) Pos() int64    { return s.pos }

func (s *ReaderAtStream) SetPos(pos int64) error {
	if pos < 0 || pos > s.length {
		return &InvalidPosition{Pos: pos, Length: s.length}
	}
	s.pos = pos
	return nil
}

func (s *ReaderAtStream) GetByte() (byte, error) {
	var buf [1]byte
	if s.pos >= s.length {
		return 0, &UnexpectedEndOfStream{Pos: s.origin + s.pos}
	}
	if _, err := s.r.ReadAt(buf[:], s.origin+s.pos); err != nil && err != io.EOF {
		return 0, &StreamError{Msg: "read", Err: err}
	}
	s.pos++
	return buf[0], nil
}

func (s *ReaderAtStream) PeekByte() (byte, error) {
	var buf [1]byte
	if s.pos >= s.length {
		return 0, &UnexpectedEndOfStream{Pos: s.origin + s.pos}
	}
	if _, err := s.r.ReadAt(buf[:], s.origin+s.pos); err != nil && err != io.EOF {
		return 0, &StreamError{Msg: "peek", Err: err}
	}
	return buf[0], nil
}

func (s *ReaderAtStream) GetBytes(n int) ([]byte, error) {
	end := s.pos + int64(n)
	if end > s.length {
		end = s.length
	}
	want := end - s.pos
	if want <= 0 {
		return nil, nil
	}
	buf := make([]byte, want)
	if _, err := s.r.ReadAt(buf, s.origin+s.pos); err != nil && err != io.EOF {
		return nil, &StreamError{Msg: "read", Err: err}
	}
	s.pos = end
	return buf, nil
}

func (s *ReaderAtStream) GetByteRange(begin, end int64) ([]byte, error) {
	if begin < 0 || end < begin || end > s.length {
		return nil, &InvalidByteRange{Begin: begin, End: end}
	}
	buf := make([]byte, end-begin)
	if _, err := s.r.ReadAt(buf, s.origin+begin); err != nil && err != io.EOF {
		return nil, &StreamError{Msg: "read range", Err: err}
	}
	return buf, nil
}

func (s *ReaderAtStream) Reset() { s.pos = 0 }

func (s *ReaderAtStream) MoveStart(delta int64) {
	s.origin += delta
	s.length -= delta
}

func (s *ReaderAtStream) MakeSubStream(start, length int64) Stream {
	if start < 0 || length < 0 || start+length > s.length {
		length = s.length - start
		if length < 0 {
			length = 0
		}
	}
	return &ReaderAtStream{r: s.r, length: length, origin: s.origin + start}
}

func (s *ReaderAtStream) EnsureRange(begin, end int64) error { return nil }
