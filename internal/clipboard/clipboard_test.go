package clipboard

import (
	"errors"
	"testing"
)

type memoryClipboard struct {
	inits int
	data  []byte
	err   error
}

func (m *memoryClipboard) backend() backend {
	return backend{
		init: func() error {
			m.inits++
			return m.err
		},
		write: func(text []byte) { m.data = append([]byte(nil), text...) },
		read:  func() []byte { return m.data },
	}
}

func TestWriteReadText(t *testing.T) {
	mem := &memoryClipboard{}
	defer setBackend(mem.backend())()

	if err := WriteText("/repo/src/a.txt"); err != nil {
		t.Fatalf("WriteText() error = %v", err)
	}
	got, err := ReadText()
	if err != nil {
		t.Fatalf("ReadText() error = %v", err)
	}
	if got != "/repo/src/a.txt" {
		t.Errorf("ReadText() = %q", got)
	}
	if mem.inits != 1 {
		t.Errorf("clipboard initialized %d times, want 1", mem.inits)
	}
}

func TestInitFailure(t *testing.T) {
	mem := &memoryClipboard{err: errors.New("no display")}
	defer setBackend(mem.backend())()

	if err := WriteText("x"); err == nil {
		t.Fatal("WriteText() should fail when the clipboard cannot initialize")
	}
	if mem.data != nil {
		t.Error("nothing should be written after a failed init")
	}

	// A later attempt retries initialization.
	mem.err = nil
	if err := Init(); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	if mem.inits != 2 {
		t.Errorf("inits = %d, want 2", mem.inits)
	}
}
