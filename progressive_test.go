package pdf

import (
	"io"
	"testing"
)

func TestStreamReaderAtReadsInRange(t *testing.T) {
	data := []byte("0123456789")
	ra := &streamReaderAt{stream: NewMemoryStream(data)}

	buf := make([]byte, 4)
	n, err := ra.ReadAt(buf, 3)
	if err != nil {
		t.Fatalf("ReadAt: %v", err)
	}
	if n != 4 || string(buf) != "3456" {
		t.Fatalf("got %q (n=%d), want %q", buf[:n], n, "3456")
	}
}

func TestStreamReaderAtReadsPastEndReturnsEOF(t *testing.T) {
	data := []byte("abc")
	ra := &streamReaderAt{stream: NewMemoryStream(data)}

	buf := make([]byte, 4)
	n, err := ra.ReadAt(buf, 0)
	if err != io.EOF {
		t.Fatalf("got err %v, want io.EOF", err)
	}
	if n != 3 || string(buf[:n]) != "abc" {
		t.Fatalf("got %q (n=%d), want %q", buf[:n], n, "abc")
	}
}

func TestStreamReaderAtOffAtEndReturnsEOF(t *testing.T) {
	data := []byte("abc")
	ra := &streamReaderAt{stream: NewMemoryStream(data)}

	buf := make([]byte, 1)
	_, err := ra.ReadAt(buf, 3)
	if err != io.EOF {
		t.Fatalf("got err %v, want io.EOF", err)
	}
}

func TestNewProgressiveReaderRejectsInvalidConfig(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.ChunkSize = 0 // violates min=1024
	_, err := NewProgressiveReader(NewMemoryStream([]byte("%PDF-1.4\n")), cfg)
	if err == nil {
		t.Fatal("expected validation error for zero chunk size")
	}
}
