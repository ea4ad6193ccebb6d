// Package logging provides the engine's shared logger: a small leveled
// surface (Infof/Warnf/Errorf/Successf/Countf/Fatalf) over zerolog, with
// daily-rotating log files plus dedicated errors-only and count-only
// files so run summaries keep their own on-disk trail.
package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// custom levels beyond zerolog's built-in set. SUCCESS and COUNT carry
// batch/run summaries that deserve their own on-disk trail alongside
// ordinary INFO lines.
const (
	levelSuccess = zerolog.Level(9)
	levelCount   = zerolog.Level(10)
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

// LogSettings controls where logs go.
//
//   - NoLogs=true  => console-only (stdout), no log files created.
//   - NoLogs=false => daily rotating "triage_YYYY-MM-DD.log" files under
//     LogDir, plus a dedicated "errors_YYYY-MM-DD.log" and
//     "count_YYYY-MM-DD.log".
type LogSettings struct {
	NoLogs bool
	LogDir string
}

// Logger is a goroutine-safe logger shared across the Catalog, Safety
// Engine, Orchestrator, Execution Engine, and Undo Manager.
type Logger struct {
	settings LogSettings
	levels   map[string]bool

	mu      sync.Mutex
	date    string
	main    zerolog.Logger
	count   zerolog.Logger
	errFile zerolog.Logger
}

// New initializes a Logger. If settings.NoLogs is false, settings.LogDir
// must be set and is created eagerly so permission problems surface at
// startup rather than mid-run.
func New(settings LogSettings) (*Logger, error) {
	levels := defaultLevels()

	if !settings.NoLogs {
		if settings.LogDir == "" {
			return nil, fmt.Errorf("log dir is empty (settings.LogDir)")
		}
		if err := os.MkdirAll(settings.LogDir, os.ModePerm); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}

	l := &Logger{settings: settings, levels: levels}
	l.rotateLocked(time.Now())
	return l, nil
}

func defaultLevels() map[string]bool {
	return map[string]bool{
		"DEBUG": false, "COUNT": true, "INFO": true,
		"WARN": true, "ERROR": true, "SUCCESS": true, "FATAL": true,
	}
}

// Enabled returns whether a log level is enabled. Unknown levels fail open
// (enabled) so a new level introduced in code is never silently dropped
// just because defaultLevels does not list it.
func (l *Logger) Enabled(level string) bool {
	level = strings.ToUpper(strings.TrimSpace(level))
	enabled, ok := l.levels[level]
	return !ok || enabled
}

func (l *Logger) rotateLocked(now time.Time) {
	date := now.Format("2006-01-02")
	if date == l.date {
		return
	}
	l.date = date

	if l.settings.NoLogs {
		w := zerolog.ConsoleWriter{Out: os.Stdout, NoColor: false, TimeFormat: "01/02/06 15:04:05"}
		l.main = zerolog.New(w).With().Timestamp().Logger()
		l.count = l.main
		l.errFile = l.main
		return
	}

	mainPath := filepath.Join(l.settings.LogDir, fmt.Sprintf("triage_%s.log", date))
	countPath := filepath.Join(l.settings.LogDir, fmt.Sprintf("count_%s.log", date))
	errPath := filepath.Join(l.settings.LogDir, fmt.Sprintf("errors_%s.log", date))

	l.main = zerolog.New(openAppend(mainPath)).With().Timestamp().Logger()
	l.count = zerolog.New(openAppend(countPath)).With().Timestamp().Logger()
	l.errFile = zerolog.New(openAppend(errPath)).With().Timestamp().Logger()
}

func openAppend(path string) *os.File {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return os.Stdout
	}
	return f
}

func (l *Logger) log(level string, msg string) {
	if !l.Enabled(level) {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rotateLocked(time.Now())

	switch level {
	case "DEBUG":
		l.main.Debug().Msg(msg)
	case "INFO":
		l.main.Info().Msg(msg)
	case "WARN":
		l.main.Warn().Msg(msg)
	case "ERROR":
		l.main.Error().Msg(msg)
		l.errFile.Error().Msg(msg)
	case "FATAL":
		l.main.WithLevel(zerolog.FatalLevel).Msg(msg)
	case "SUCCESS":
		l.main.WithLevel(levelSuccess).Msg(msg)
	case "COUNT":
		l.main.WithLevel(levelCount).Msg(msg)
		l.count.WithLevel(levelCount).Msg(msg)
	default:
		l.main.Info().Msg(msg)
	}
}

func (l *Logger) Debug(msg string)   { l.log("DEBUG", msg) }
func (l *Logger) Info(msg string)    { l.log("INFO", msg) }
func (l *Logger) Warn(msg string)    { l.log("WARN", msg) }
func (l *Logger) Error(msg string)   { l.log("ERROR", msg) }
func (l *Logger) Success(msg string) { l.log("SUCCESS", msg) }
func (l *Logger) Count(msg string)   { l.log("COUNT", msg) }

// Fatal logs the message and exits the process with code 1. Defers do not
// run after os.Exit; use only for unrecoverable startup failures
// (configuration rejection, schema-init failure).
func (l *Logger) Fatal(msg string) { l.log("FATAL", msg); os.Exit(1) }

func (l *Logger) Debugf(format string, args ...any)   { l.Debug(fmt.Sprintf(format, args...)) }
func (l *Logger) Infof(format string, args ...any)    { l.Info(fmt.Sprintf(format, args...)) }
func (l *Logger) Warnf(format string, args ...any)    { l.Warn(fmt.Sprintf(format, args...)) }
func (l *Logger) Errorf(format string, args ...any)   { l.Error(fmt.Sprintf(format, args...)) }
func (l *Logger) Successf(format string, args ...any) { l.Success(fmt.Sprintf(format, args...)) }
func (l *Logger) Countf(format string, args ...any)   { l.Count(fmt.Sprintf(format, args...)) }
func (l *Logger) Fatalf(format string, args ...any)   { l.Fatal(fmt.Sprintf(format, args...)) }
