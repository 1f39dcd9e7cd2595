// Package logging defines the logger contract shared by every solnotes
// package. It mirrors the interface exposed by github.com/goliatone/go-logger
// so the gologger provider can be plugged in without adapters at call sites.
package logging

import (
	"context"
	"strings"
)

// Logger is the structured logging contract used across solnotes.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithFields(fields map[string]any) Logger
	WithContext(ctx context.Context) Logger
}

// Provider hands out named child loggers.
type Provider interface {
	GetLogger(name string) Logger
}

const rootModule = "solnotes"

// Module names used by the solnotes packages.
const (
	ModuleHTTP     = "solnotes.http"
	ModuleSolution = "solnotes.solution"
	ModuleContent  = "solnotes.content"
	ModuleAuth     = "solnotes.auth"
	ModuleRebuild  = "solnotes.rebuild"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The module name is attached
// as a structured field.
func ModuleLogger(provider Provider, module string) Logger {
	module = strings.TrimSpace(module)
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}
	return logger.WithFields(map[string]any{"module": module})
}

// OrNoOp returns logger, or a no-op logger when logger is nil.
func OrNoOp(logger Logger) Logger {
	if logger == nil {
		return NoOp()
	}
	return logger
}

// NoOp returns a logger that drops every entry.
func NoOp() Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) Logger { return n }

func (n noopLogger) WithContext(context.Context) Logger { return n }
