package metadata_test

import (
	"os"
	"testing"

	"github.com/feral-file/nft-metadata-gateway/internal/logger"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: true}); err != nil {
		panic(err)
	}
	code := m.Run()
	os.Exit(code)
}
