// Package logging - builds the process logger handed down to the pipeline and the batch runner.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"runtime"
	"strings"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/nvr-ai/go-camoxai/common"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Field names shared by every log line about an image.
const (
	RunIDKey     = "run_id"
	ImageKey     = "image"
	LevelKey     = "level"
	WeakAreasKey = "weak_areas"
	FindingsKey  = "findings"
)

// Fields is an alias so callers don't need to import logrus for plain field maps.
type Fields = logrus.Fields

// Options configures New.
type Options struct {
	// Level is a logrus level name. Empty means info.
	Level string
	// File, when set, receives a rotated copy of every line.
	File string
	// Output replaces stderr as the console writer.
	Output io.Writer
	// NoColors disables ANSI colors on the console.
	NoColors bool
	// ReportCaller prefixes lines with the calling file and function.
	ReportCaller bool
}

// New returns a logger configured by opts. Each call returns a new logger.
func New(opts Options) (*logrus.Logger, error) {
	level := logrus.InfoLevel
	if opts.Level != "" {
		parsed, err := logrus.ParseLevel(opts.Level)
		if err != nil {
			return nil, common.InvalidConfiguration("log level %q: %v", opts.Level, err)
		}
		level = parsed
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&formatter.Formatter{
		NoColors:        opts.NoColors,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		FieldsOrder:     []string{RunIDKey, ImageKey, LevelKey},
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, funcName)
		},
	})

	console := opts.Output
	if console == nil {
		console = os.Stderr
	}
	writers := []io.Writer{console}
	if opts.File != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}

	logger.SetOutput(io.MultiWriter(writers...))
	logger.SetReportCaller(opts.ReportCaller)
	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return Discard()
	}
	return l
}
