package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/rustcap/pkg/observability"
)

// newLogger creates a new logger with timestamp formatting.
// Timestamps are formatted as "HH:MM:SS.ms" (e.g., "14:32:01.45").
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress tracks the start time of an operation and logs completion with elapsed duration.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg along with the elapsed time since progress was created.
// Example output: "Resolved 42 packages (1.234s)"
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

// logHooks reports publishing progress through the CLI logger.
type logHooks struct {
	observability.NoopPublishHooks
	logger *log.Logger
}

func (h logHooks) OnPlanComplete(_ context.Context, packages int, version string, d time.Duration, err error) {
	if err != nil {
		return
	}
	h.logger.Info("planned", "packages", packages, "version", version, "took", d.Round(time.Millisecond))
}

func (h logHooks) OnPackageStart(_ context.Context, name string, index, total int) {
	h.logger.Infof("[%d/%d] %s", index+1, total, name)
}

func (h logHooks) OnPackageComplete(_ context.Context, name string, d time.Duration, err error) {
	if err != nil {
		h.logger.Error("failed", "package", name, "err", err)
		return
	}
	h.logger.Debug("done", "package", name, "took", d.Round(time.Millisecond))
}
