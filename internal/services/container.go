package services

import (
	"time"

	"github.com/samber/do"
	"go.uber.org/zap"
)

// invokeClock returns the named "clock" provider when the container has one.
func invokeClock(container *do.Injector) func() time.Time {
	clock, err := do.InvokeNamed[func() time.Time](container, "clock")
	if err != nil || clock == nil {
		return time.Now
	}
	return clock
}

func invokeLogger(container *do.Injector) *zap.Logger {
	logger, err := do.Invoke[*zap.Logger](container)
	if err != nil || logger == nil {
		return zap.NewNop()
	}
	return logger
}
