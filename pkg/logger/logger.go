package logger

import (
	"io"
	"os"
	"path/filepath"

	"github.com/athlink/cli/pkg/config"
	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

var logger *log.Logger

// Init initializes the logger
func Init(verbose bool) {
	logLevel, err := log.ParseLevel(config.GetString("log.level"))
	if err != nil {
		logLevel = log.InfoLevel
	}
	if verbose {
		logLevel = log.DebugLevel
	}

	var w io.Writer = os.Stderr
	if logFile := config.GetString("log.file"); logFile != "" {
		// If we can't create the log directory, just log to stderr
		if err := os.MkdirAll(filepath.Dir(logFile), 0700); err == nil {
			w = &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    config.GetInt("log.max_size_mb"),
				MaxBackups: config.GetInt("log.max_backups"),
				MaxAge:     7,
			}
		}
	}

	SetOutput(w, logLevel)
}

// SetOutput replaces the logger with one writing to w at the given level
func SetOutput(w io.Writer, level log.Level) {
	logger = log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
	})
}

// Debug logs a debug message
func Debug(msg string, args ...interface{}) {
	if logger != nil {
		logger.Debug(msg, args...)
	}
}

// Info logs an info message
func Info(msg string, args ...interface{}) {
	if logger != nil {
		logger.Info(msg, args...)
	}
}

// Warn logs a warning message
func Warn(msg string, args ...interface{}) {
	if logger != nil {
		logger.Warn(msg, args...)
	}
}

// Error logs an error message
func Error(msg string, args ...interface{}) {
	if logger != nil {
		logger.Error(msg, args...)
	}
}

// Fatal logs a fatal message and exits
func Fatal(msg string, args ...interface{}) {
	if logger != nil {
		logger.Fatal(msg, args...)
	} else {
		os.Exit(1)
	}
}

// GetLogger returns the logger instance
func GetLogger() *log.Logger {
	return logger
}
