package utils

import (
	"os"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// InitSentry initializes Sentry for error tracking. It reports whether Sentry is enabled;
// without SENTRY_DSN events are dropped.
func InitSentry() bool {
	dsn := os.Getenv("SENTRY_DSN")
	if dsn == "" {
		logrus.Info("SENTRY_DSN not set, error tracking disabled")
		return false
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      os.Getenv("SENTRY_ENVIRONMENT"),
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		logrus.Errorf("sentry.Init: %v", err)
		return false
	}

	logrus.Info("Sentry initialized with DSN from: environment")
	return true
}

// FlushSentry waits for buffered events to be delivered
func FlushSentry() {
	sentry.Flush(2 * time.Second)
}
