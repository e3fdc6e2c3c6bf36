package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	logDir         = "logs"
	fileBufferSize = 32 * 1024
	consoleBuffer  = 1024
)

type Options struct {
	// Name of the log file inside the logs directory, e.g. "registry.log".
	File  string
	Level string
	// Dir overrides the logs directory; tests point it at a temp dir.
	Dir string
}

// Logger bundles the configured logrus logger with the writers that must be
// flushed on shutdown.
type Logger struct {
	*logrus.Logger
	file    *AsyncFileWriter
	console *AsyncConsoleHook
}

func NewLogger(opts Options) (*Logger, error) {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{
		TimestampFormat: time.RFC3339,
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyTime: "time",
			logrus.FieldKeyMsg:  "msg",
		},
	})

	level := opts.Level
	if level == "" {
		level = os.Getenv("LOG_LEVEL")
	}
	if strings.EqualFold(level, "debug") {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	dir := opts.Dir
	if dir == "" {
		dir = logDir
	}
	if opts.File == "" || strings.ContainsAny(opts.File, `/\`) {
		return nil, fmt.Errorf("invalid log file name %q: must be a plain file name", opts.File)
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create logs directory: %w", err)
	}

	fileWriter, err := NewAsyncFileWriter(filepath.Join(dir, opts.File), fileBufferSize)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize async log writer: %w", err)
	}
	logger.SetOutput(fileWriter)

	console := NewAsyncConsoleHook(os.Stdout, consoleBuffer)
	logger.AddHook(console)

	return &Logger{Logger: logger, file: fileWriter, console: console}, nil
}

// Close flushes pending entries to the console and the log file.
func (l *Logger) Close() error {
	l.console.Close()
	return l.file.Close()
}
