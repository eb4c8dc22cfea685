package log

import (
	"fmt"
	"log"
	"strings"
)

// controlCharReplacer escapes control characters that can be used for log
// injection (CWE-117). Newlines and carriage returns in attacker-supplied
// strings can forge fake log entries and mislead incident response.
var controlCharReplacer = strings.NewReplacer(
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
)

func sanitize(s string) string {
	return controlCharReplacer.Replace(s)
}

func sanitizeArgs(args []any) []any {
	out := make([]any, len(args))

	for i, arg := range args {
		if s, ok := arg.(string); ok {
			out[i] = sanitize(s)
		} else {
			out[i] = arg
		}
	}

	return out
}

// GoLogger is the Go built-in (log) implementation of the Logger interface.
// It is the default used when no structured logger is supplied.
//
// All string arguments are sanitized to prevent log injection (CWE-117).
type GoLogger struct {
	Level  LogLevel
	fields []any
}

// IsLevelEnabled checks if the given level is enabled.
func (l *GoLogger) IsLevelEnabled(level LogLevel) bool {
	if l == nil {
		return false
	}

	return l.Level >= level
}

// Info implements the Logger interface.
func (l *GoLogger) Info(args ...any) {
	if l.IsLevelEnabled(InfoLevel) {
		log.Print(l.prefix(InfoLevel, args...))
	}
}

// Infof implements the Logger interface.
func (l *GoLogger) Infof(format string, args ...any) {
	if l.IsLevelEnabled(InfoLevel) {
		log.Print(l.prefix(InfoLevel, fmt.Sprintf(sanitize(format), args...)))
	}
}

// Error implements the Logger interface.
func (l *GoLogger) Error(args ...any) {
	if l.IsLevelEnabled(ErrorLevel) {
		log.Print(l.prefix(ErrorLevel, args...))
	}
}

// Errorf implements the Logger interface.
func (l *GoLogger) Errorf(format string, args ...any) {
	if l.IsLevelEnabled(ErrorLevel) {
		log.Print(l.prefix(ErrorLevel, fmt.Sprintf(sanitize(format), args...)))
	}
}

// Warn implements the Logger interface.
func (l *GoLogger) Warn(args ...any) {
	if l.IsLevelEnabled(WarnLevel) {
		log.Print(l.prefix(WarnLevel, args...))
	}
}

// Warnf implements the Logger interface.
func (l *GoLogger) Warnf(format string, args ...any) {
	if l.IsLevelEnabled(WarnLevel) {
		log.Print(l.prefix(WarnLevel, fmt.Sprintf(sanitize(format), args...)))
	}
}

// Debug implements the Logger interface.
func (l *GoLogger) Debug(args ...any) {
	if l.IsLevelEnabled(DebugLevel) {
		log.Print(l.prefix(DebugLevel, args...))
	}
}

// Debugf implements the Logger interface.
func (l *GoLogger) Debugf(format string, args ...any) {
	if l.IsLevelEnabled(DebugLevel) {
		log.Print(l.prefix(DebugLevel, fmt.Sprintf(sanitize(format), args...)))
	}
}

// Fatal implements the Logger interface.
func (l *GoLogger) Fatal(args ...any) {
	if l.IsLevelEnabled(FatalLevel) {
		log.Fatal(l.prefix(FatalLevel, args...))
	}
}

// Fatalf implements the Logger interface.
func (l *GoLogger) Fatalf(format string, args ...any) {
	if l.IsLevelEnabled(FatalLevel) {
		log.Fatal(l.prefix(FatalLevel, fmt.Sprintf(sanitize(format), args...)))
	}
}

// WithFields implements the Logger interface.
//
//nolint:ireturn
func (l *GoLogger) WithFields(fields ...any) Logger {
	if l == nil {
		return &GoLogger{}
	}

	merged := make([]any, 0, len(l.fields)+len(fields))
	merged = append(merged, l.fields...)
	merged = append(merged, fields...)

	return &GoLogger{
		Level:  l.Level,
		fields: merged,
	}
}

// Sync implements the Logger interface. The standard logger is unbuffered.
func (l *GoLogger) Sync() error { return nil }

func (l *GoLogger) prefix(level LogLevel, args ...any) string {
	message := fmt.Sprint(sanitizeArgs(args)...)

	if l == nil {
		return message
	}

	parts := make([]string, 0, 3)
	parts = append(parts, fmt.Sprintf("[%s]", level.String()))

	if fields := l.renderFields(); fields != "" {
		parts = append(parts, fields)
	}

	parts = append(parts, message)

	return strings.Join(parts, " ")
}

func (l *GoLogger) renderFields() string {
	if len(l.fields) == 0 {
		return ""
	}

	parts := make([]string, 0, (len(l.fields)+1)/2)

	for i := 0; i < len(l.fields); i += 2 {
		if i+1 >= len(l.fields) {
			parts = append(parts, fmt.Sprint(l.fields[i]))
			continue
		}

		parts = append(parts, fmt.Sprintf("%v=%v", l.fields[i], l.fields[i+1]))
	}

	return fmt.Sprintf("[%s]", strings.Join(parts, ", "))
}
