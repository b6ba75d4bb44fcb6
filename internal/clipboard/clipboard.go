// Package clipboard copies text to the system clipboard.
package clipboard

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"

	"github.com/zhubert/mend/internal/logger"
)

// backend is the clipboard implementation; tests replace it.
type backend struct {
	init  func() error
	write func(text []byte)
	read  func() []byte
}

var (
	mu          sync.Mutex
	initialized bool
	impl        = systemBackend()
)

func systemBackend() backend {
	return backend{
		init:  clipboard.Init,
		write: func(text []byte) { clipboard.Write(clipboard.FmtText, text) },
		read:  func() []byte { return clipboard.Read(clipboard.FmtText) },
	}
}

// Init initializes the clipboard. Must be called before other functions.
// This is safe to call multiple times.
func Init() error {
	mu.Lock()
	defer mu.Unlock()
	return initLocked()
}

func initLocked() error {
	if initialized {
		return nil
	}
	log := logger.ComponentLogger("Clipboard")
	if err := impl.init(); err != nil {
		log.Warn("failed to initialize clipboard", "error", err)
		return fmt.Errorf("failed to initialize clipboard: %w", err)
	}
	initialized = true
	log.Debug("clipboard initialized")
	return nil
}

// WriteText puts text on the clipboard.
func WriteText(text string) error {
	mu.Lock()
	defer mu.Unlock()
	if err := initLocked(); err != nil {
		return err
	}
	impl.write([]byte(text))
	logger.ComponentLogger("Clipboard").Debug("copied text", "bytes", len(text))
	return nil
}

// ReadText reads text from the clipboard.
func ReadText() (string, error) {
	mu.Lock()
	defer mu.Unlock()
	if err := initLocked(); err != nil {
		return "", err
	}
	return string(impl.read()), nil
}

// setBackend swaps the clipboard implementation and returns a restore func.
func setBackend(b backend) func() {
	mu.Lock()
	defer mu.Unlock()
	prev, prevInit := impl, initialized
	impl, initialized = b, false
	return func() {
		mu.Lock()
		defer mu.Unlock()
		impl, initialized = prev, prevInit
	}
}
