package log

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const DefaultTimeFormat = "2006-01-02 15:04:05"

type Logger struct {
	mu     *sync.Mutex
	writer io.Writer
	exit   func(int)

	Name  string
	Level LogLevel

	TimeFormat string
	NoColor    bool
	JSON       bool
}

// Options describe where and how a root logger writes.
type Options struct {
	Name  string
	Level LogLevel

	// File enables a rotated log file next to (or instead of) the terminal
	File       string
	NoTerminal bool
	NoColor    bool
	JSON       bool
	TimeFormat string
	Rotation   *LoggerRotation
}

type LoggerRotation struct {
	MaxSize    int
	MaxBackups int
	MaxAge     int
	Compress   bool
}

type logEntry struct {
	Timestamp string `json:"timestamp"`
	Level     string `json:"level"`
	Service   string `json:"service,omitempty"`
	Message   string `json:"message"`
}

func DefaultRotation() *LoggerRotation {
	return &LoggerRotation{
		MaxSize:    128,
		MaxBackups: 5,
		MaxAge:     16,
		Compress:   false,
	}
}

// New creates a root logger writing to stdout and/or a rotated file.
func New(opts Options) *Logger {
	var writers []io.Writer

	if !opts.NoTerminal {
		writers = append(writers, os.Stdout)
	}

	if opts.File != "" {
		rotation := opts.Rotation
		if rotation == nil {
			rotation = DefaultRotation()
		}

		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    rotation.MaxSize,
			MaxBackups: rotation.MaxBackups,
			MaxAge:     rotation.MaxAge,
			Compress:   rotation.Compress,
		})
	}

	if len(writers) == 0 {
		writers = append(writers, os.Stdout)
	}

	l := NewWithWriter(opts.Name, opts.Level, io.MultiWriter(writers...))
	l.JSON = opts.JSON
	// Escape sequences only make sense for a terminal-only output
	l.NoColor = opts.NoColor || opts.NoTerminal || opts.File != ""
	if opts.TimeFormat != "" {
		l.TimeFormat = opts.TimeFormat
	}

	return l
}

// NewLogger keeps the short form for a terminal logger with optional file output.
func NewLogger(name string, level LogLevel, file string, noTerminal bool) *Logger {
	return New(Options{
		Name:       name,
		Level:      level,
		File:       file,
		NoTerminal: noTerminal,
	})
}

// NewWithWriter creates an uncolored logger on top of w.
func NewWithWriter(name string, level LogLevel, w io.Writer) *Logger {
	return &Logger{
		mu:     &sync.Mutex{},
		writer: w,
		exit:   os.Exit,

		Name:  name,
		Level: level,

		TimeFormat: DefaultTimeFormat,
		NoColor:    true,
	}
}

// Discard returns a logger that drops every message.
func Discard() *Logger {
	return NewWithWriter("", Fatal+1, io.Discard)
}

func (l *Logger) log(level LogLevel, msg string, args ...any) {
	if level < l.Level {
		return
	}

	timestamp := time.Now().Format(l.TimeFormat)
	formattedMsg := msg
	if len(args) > 0 {
		formattedMsg = fmt.Sprintf(msg, args...)
	}

	l.mu.Lock()
	if l.JSON {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Service:   l.Name,
			Message:   formattedMsg,
		}

		jsonBytes, _ := json.Marshal(entry)
		fmt.Fprintf(l.writer, "%s\n", jsonBytes)
	} else {
		prefix := fmt.Sprintf("[%s] %-5s", timestamp, level)
		if l.Name != "" {
			prefix = fmt.Sprintf("%s [%s]", prefix, l.Name)
		}

		if !l.NoColor {
			fmt.Fprintln(l.writer, colorize(level, prefix+" "+formattedMsg))
		} else {
			fmt.Fprintf(l.writer, "%s %s\n", prefix, formattedMsg)
		}
	}
	l.mu.Unlock()

	if level == Fatal {
		l.exit(1)
	}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.log(Debug, msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.log(Info, msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.log(Warn, msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.log(Error, msg, args...)
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.log(Fatal, msg, args...)
}

// Named derives a child logger sharing writer and lock; names nest as "parent/child".
func (l *Logger) Named(name string) *Logger {
	childName := name
	if l.Name != "" {
		childName = fmt.Sprintf("%s/%s", l.Name, name)
	}

	return &Logger{
		mu:     l.mu,
		writer: l.writer,
		exit:   l.exit,

		Name:  childName,
		Level: l.Level,

		TimeFormat: l.TimeFormat,
		NoColor:    l.NoColor,
		JSON:       l.JSON,
	}
}
