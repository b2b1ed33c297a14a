package monitoring

import (
	"strconv"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/tpaukrt/DRAMConsole/internal/config"
)

// InitSentry configures sentry if DSN provided.
func InitSentry(cfg config.MonitoringConfig, app config.AppConfig) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Release:          app.Version,
		Environment:      app.Env,
		TracesSampleRate: cfg.SentrySampleRate,
	})
}

// ReportRecovery notes that a previous cycle left a non-empty crash
// log behind. The snapshot content itself never leaves the host; only
// its size ships.
func ReportRecovery(snapshotBytes int) {
	if snapshotBytes == 0 {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetLevel(sentry.LevelWarning)
		scope.SetTag("snapshot_bytes", strconv.Itoa(snapshotBytes))
		sentry.CaptureMessage("previous cycle terminated with unretrieved log output")
	})
}

// Flush ensures buffered events ship.
func Flush() {
	sentry.Flush(2 * time.Second)
}
