// Package logger hands out named logrus loggers that share one output setup.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where and how every named logger writes.
type Options struct {
	Level      string
	Format     string // "text" or "json"
	Output     string // "stdout", "file" or "both"
	Path       string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// DefaultOptions logs text at info level to stdout.
func DefaultOptions() Options {
	return Options{
		Level:      "info",
		Format:     "text",
		Output:     "stdout",
		Path:       "logs",
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 14,
	}
}

var (
	loggers   = make(map[string]*logrus.Logger)
	loggersMu sync.Mutex
	opts      = DefaultOptions()
)

// Init sets the options for loggers created afterwards and resets the cache.
func Init(o Options) error {
	if o.Output == "file" || o.Output == "both" {
		if err := os.MkdirAll(o.Path, 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	loggersMu.Lock()
	defer loggersMu.Unlock()
	opts = o
	loggers = make(map[string]*logrus.Logger)
	return nil
}

// Get returns the logger registered under name, creating it on first use.
// The service uses "app", "audit" and "job".
func Get(name string) *logrus.Logger {
	loggersMu.Lock()
	defer loggersMu.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}
	l := newLogger(name, opts)
	loggers[name] = l
	return l
}

func newLogger(name string, o Options) *logrus.Logger {
	l := logrus.New()

	level, err := logrus.ParseLevel(o.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	l.SetLevel(level)

	if o.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
			FieldMap: logrus.FieldMap{
				logrus.FieldKeyTime: "timestamp",
				logrus.FieldKeyMsg:  "message",
			},
		})
	} else {
		l.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	var writers []io.Writer
	if o.Output == "file" || o.Output == "both" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(o.Path, name+".log"),
			MaxSize:    o.MaxSizeMB,
			MaxBackups: o.MaxBackups,
			MaxAge:     o.MaxAgeDays,
			Compress:   true,
		})
	}
	if o.Output != "file" {
		writers = append(writers, os.Stdout)
	}
	l.SetOutput(io.MultiWriter(writers...))
	l.AddHook(serviceHook(name))
	return l
}

// serviceHook stamps every entry with the logger name.
type serviceHook string

func (h serviceHook) Levels() []logrus.Level { return logrus.AllLevels }

func (h serviceHook) Fire(e *logrus.Entry) error {
	if _, ok := e.Data["service"]; !ok {
		e.Data["service"] = string(h)
	}
	return nil
}
