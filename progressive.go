package pdf

import "io"

// streamReaderAt adapts a Stream to io.ReaderAt, so a progressively loaded
// document can be handed to the same xref/object-parsing machinery that
// reads an ordinary os.File: every ReadAt first asks the Stream to ensure
// the requested range is resident (which, for an HTTPChunkedStream, is
// exactly where a network fetch happens), then copies the bytes out. This
// keeps the parser itself - every io.NewSectionReader call in read.go -
// unaware of where its bytes actually come from.
type streamReaderAt struct {
	stream Stream
}

func (s *streamReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	end := off + int64(len(p))
	if end > s.stream.Length() {
		end = s.stream.Length()
	}
	if off >= end {
		return 0, io.EOF
	}
	if err := s.stream.EnsureRange(off, end); err != nil {
		return 0, err
	}
	data, err := s.stream.GetByteRange(off, end)
	if err != nil {
		return 0, err
	}
	n := copy(p, data)
	if int64(n) < int64(len(p)) {
		return n, io.EOF
	}
	return n, nil
}

func (s *streamReaderAt) Close() error {
	if c, ok := s.stream.(interface{ Close() error }); ok {
		return c.Close()
	}
	return nil
}

// NewProgressiveReader opens a document backed by stream, which may raise
// MissingData internally (an HTTPChunkedStream) and satisfy it itself via
// EnsureRange before returning bytes to the parser - the parser sees a
// plain io.ReaderAt and never has to retry anything. cfg supplies the
// parse limits threaded through the resulting Reader's xref/object
// parsing; pass nil for NewDefaultConfig()'s defaults.
func NewProgressiveReader(stream Stream, cfg *Config) (*Reader, error) {
	if cfg == nil {
		cfg = NewDefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ra := &streamReaderAt{stream: stream}
	r, err := NewReaderEncrypted(ra, stream.Length(), nil)
	if err != nil {
		return nil, err
	}
	r.closer = ra
	r.limits = &cfg.Limits
	return r, nil
}
