package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var (
	mu           sync.RWMutex
	currentLevel           = INFO
	output       io.Writer = os.Stdout
	fileWriter   *lumberjack.Logger

	levelNames = map[LogLevel]string{
		DEBUG: "DEBUG",
		INFO:  "INFO",
		WARN:  "WARN",
		ERROR: "ERROR",
		FATAL: "FATAL",
	}
	levelMap = map[string]LogLevel{
		"DEBUG": DEBUG,
		"INFO":  INFO,
		"WARN":  WARN,
		"ERROR": ERROR,
		"FATAL": FATAL,
	}
)

// Options configures the logger at startup
type Options struct {
	Level      string    // DEBUG, INFO, WARN, ERROR (default: INFO)
	File       string    // optional log file, rotated by lumberjack
	MaxSizeMB  int       // rotate after this many MB (default: 10)
	MaxBackups int       // rotated files to keep (default: 5)
	Console    io.Writer // terminal sink (default: os.Stdout)
}

// Init configures level and sinks. Safe to call more than once; the previous
// log file, if any, is closed.
func Init(opts Options) {
	mu.Lock()
	defer mu.Unlock()

	if fileWriter != nil {
		_ = fileWriter.Close()
		fileWriter = nil
	}

	console := opts.Console
	if console == nil {
		console = os.Stdout
	}
	output = console
	if opts.File != "" {
		maxSize := opts.MaxSizeMB
		if maxSize == 0 {
			maxSize = 10
		}
		maxBackups := opts.MaxBackups
		if maxBackups == 0 {
			maxBackups = 5
		}
		fileWriter = &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    maxSize,
			MaxBackups: maxBackups,
			Compress:   true,
		}
		output = io.MultiWriter(console, fileWriter)
	}

	log.SetOutput(output)
	log.SetFlags(0)

	currentLevel           = INFO
	if opts.Level == "" {
		return
	}
	level, ok := ParseLevel(opts.Level)
	if !ok {
		log.Println(formatMessage(WARN, "Invalid LOG_LEVEL: %s, defaulting to INFO", opts.Level))
		return
	}
	currentLevel = level
}

// ParseLevel maps a level name (case-insensitive) to a LogLevel
func ParseLevel(name string) (LogLevel, bool) {
	level, ok := levelMap[strings.ToUpper(strings.TrimSpace(name))]
	return level, ok
}

// SetLevel changes the minimum level that is written
func SetLevel(level LogLevel) {
	mu.Lock()
	currentLevel = level
	mu.Unlock()
}

// GetCurrentLevel returns the current logging level
func GetCurrentLevel() LogLevel {
	mu.RLock()
	defer mu.RUnlock()
	return currentLevel
}

// Writer returns the sink log lines are written to. The HTTP access log
// shares it.
func Writer() io.Writer {
	mu.RLock()
	defer mu.RUnlock()
	return output
}

// Close flushes and closes the log file, if one is open
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if fileWriter == nil {
		return nil
	}
	err := fileWriter.Close()
	fileWriter = nil
	return err
}

func formatMessage(level LogLevel, format string, args ...interface{}) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	return fmt.Sprintf("%s [%s] %s", timestamp, levelNames[level], fmt.Sprintf(format, args...))
}

func enabled(level LogLevel) bool {
	return GetCurrentLevel() <= level
}

// Debug logs a message at DEBUG level
func Debug(format string, args ...interface{}) {
	if enabled(DEBUG) {
		log.Println(formatMessage(DEBUG, format, args...))
	}
}

// Info logs a message at INFO level
func Info(format string, args ...interface{}) {
	if enabled(INFO) {
		log.Println(formatMessage(INFO, format, args...))
	}
}

// Warn logs a message at WARN level
func Warn(format string, args ...interface{}) {
	if enabled(WARN) {
		log.Println(formatMessage(WARN, format, args...))
	}
}

// Error logs a message at ERROR level
func Error(format string, args ...interface{}) {
	if enabled(ERROR) {
		log.Println(formatMessage(ERROR, format, args...))
	}
}

// Fatal logs a message at FATAL level and exits
func Fatal(format string, args ...interface{}) {
	log.Fatalln(formatMessage(FATAL, format, args...))
}
