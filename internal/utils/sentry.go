package utils

import (
	"log"
	"os"

	"github.com/getsentry/sentry-go"
)

// InitSentry initializes Sentry for error tracking. Without a DSN the
// client runs in transport-less mode and events are dropped.
func InitSentry() {
	dsn := os.Getenv("SENTRY_DSN")

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		EnableTracing:    true,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		log.Fatalf("sentry.Init: %s", err)
	}

	if dsn == "" {
		log.Printf("Sentry initialized without DSN; error tracking disabled")
	} else {
		log.Printf("Sentry initialized")
	}
}
