package gateway_test

import (
	"os"
	"testing"

	"github.com/feral-file/nft-metadata-gateway/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic("failed to initialize logger for tests: " + err.Error())
	}
	os.Exit(m.Run())
}
