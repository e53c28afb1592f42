package store_test

import (
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"

	"github.com/feral-file/nft-metadata-gateway/internal/logger"
	"github.com/feral-file/nft-metadata-gateway/internal/mocks"
)

func TestMain(m *testing.M) {
	if err := logger.Initialize(logger.Config{Debug: false}); err != nil {
		panic("failed to initialize logger for tests: " + err.Error())
	}
	os.Exit(m.Run())
}

func controllableClock(ctrl *gomock.Controller, now *time.Time) *mocks.MockClock {
	clock := mocks.NewMockClock(ctrl)
	clock.EXPECT().Now().DoAndReturn(func() time.Time { return *now }).AnyTimes()
	clock.EXPECT().Since(gomock.Any()).DoAndReturn(func(t time.Time) time.Duration { return now.Sub(t) }).AnyTimes()
	return clock
}
