// Package progress reports static export progress, either as a terminal
// bar or as structured log lines for CI.
package progress

import (
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Reporter is told about every file an export writes.
type Reporter interface {
	Begin(total int)
	Wrote(route, file string, size int)
	End(err error)
}

// Summary totals what a Reporter has seen.
type Summary struct {
	Files int
	Bytes int64
}

func (s *Summary) add(size int) {
	s.Files++
	s.Bytes += int64(size)
}

// New returns a Log reporter when running under CI and a Bar on w otherwise.
func New(w io.Writer, logger *slog.Logger) Reporter {
	if os.Getenv("CI") != "" || os.Getenv("GITHUB_ACTIONS") != "" {
		return NewLog(logger)
	}
	return NewBar(w)
}

// Bar draws a progress bar, one step per written file.
type Bar struct {
	out     io.Writer
	bar     *progressbar.ProgressBar
	summary Summary
}

func NewBar(w io.Writer) *Bar {
	if w == nil {
		w = os.Stderr
	}
	return &Bar{out: w}
}

func (b *Bar) Begin(total int) {
	b.summary = Summary{}
	b.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(b.out),
		progressbar.OptionSetDescription("export"),
		progressbar.OptionSetWidth(30),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}

func (b *Bar) Wrote(route, file string, size int) {
	b.summary.add(size)
	if b.bar == nil {
		return
	}
	b.bar.Describe(route)
	_ = b.bar.Add(1)
}

// End clears a finished bar. A failed export leaves the bar where it stopped.
func (b *Bar) End(err error) {
	if b.bar == nil {
		return
	}
	if err != nil {
		_ = b.bar.Exit()
		return
	}
	_ = b.bar.Finish()
}

func (b *Bar) Summary() Summary { return b.summary }

// Log writes one record per file.
type Log struct {
	logger  *slog.Logger
	total   int
	summary Summary
}

func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.Default()
	}
	return &Log{logger: logger}
}

func (l *Log) Begin(total int) {
	l.total = total
	l.summary = Summary{}
	l.logger.Info("export: starting", "files", total)
}

func (l *Log) Wrote(route, file string, size int) {
	l.summary.add(size)
	l.logger.Info("export: wrote",
		"route", route,
		"file", file,
		"bytes", size,
		"n", l.summary.Files,
		"of", l.total,
	)
}

func (l *Log) End(err error) {
	if err != nil {
		l.logger.Error("export: failed", "written", l.summary.Files, "error", err)
		return
	}
	l.logger.Info("export: complete", "files", l.summary.Files, "bytes", l.summary.Bytes)
}

func (l *Log) Summary() Summary { return l.summary }
