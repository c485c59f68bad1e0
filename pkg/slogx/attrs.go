package slogx

import (
	"log/slog"
)

// Error returns a slog.Attr representing the provided error.
// The attribute key is "error" and the value is the error's message.
func Error(err error) slog.Attr {
	return slog.String("error", err.Error())
}

// Session returns the attribute for a session identifier.
func Session(id string) slog.Attr {
	return slog.String("session", id)
}

// Model returns the attribute for a model name.
func Model(name string) slog.Attr {
	return slog.String("model", name)
}

// Provider returns the attribute for a provider name.
func Provider(name string) slog.Attr {
	return slog.String("provider", name)
}

// Path returns the attribute for a filesystem path.
func Path(p string) slog.Attr {
	return slog.String("path", p)
}

const (
	// KeyLoggerName is the key for the logger name attribute.
	KeyLoggerName = "logger"
)

// LoggerName creates a slog.Attr with the provided logger name.
// The attribute key is defined by KeyLoggerName.
func LoggerName(name string) slog.Attr {
	return slog.String(KeyLoggerName, name)
}
