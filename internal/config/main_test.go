package config

import (
	"os"
	"testing"

	"github.com/zhubert/mend/internal/logger"
)

func TestMain(m *testing.M) {
	// Keep test runs out of /tmp/mend-debug.log
	logger.Reset()
	logger.Init(os.DevNull)

	code := m.Run()

	logger.Reset()
	os.Exit(code)
}
