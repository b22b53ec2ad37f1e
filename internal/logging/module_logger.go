package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-headless/pkg/interfaces"
)

const (
	rootModule       = "headless"
	localesModule    = "headless.locales"
	assemblyModule   = "headless.assembly"
	storeModule      = "headless.store"
	navigationModule = "headless.navigation"
	redirectsModule  = "headless.redirects"
)

const (
	fieldLocale    = "locale"
	fieldPermalink = "permalink"
	fieldVersion   = "version"
)

// ModuleLogger returns a module-scoped logger, defaulting to a no-op
// implementation when no provider is supplied. The returned logger attaches
// the module identifier as structured context so downstream entries can be
// filtered predictably.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	if fieldsLogger, ok := logger.(interfaces.FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{
			"module": module,
		})
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// LocalesLogger returns the logger namespace reserved for locale services.
func LocalesLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, localesModule)
}

// AssemblyLogger returns the logger namespace reserved for the assembly pipeline.
func AssemblyLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, assemblyModule)
}

// StoreLogger returns the logger namespace reserved for content store adapters.
func StoreLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, storeModule)
}

// NavigationLogger returns the logger namespace reserved for navigation services.
func NavigationLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, navigationModule)
}

// RedirectsLogger returns the logger namespace reserved for redirect services.
func RedirectsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, redirectsModule)
}

// WithRequestContext enriches the provided logger with common request fields
// such as permalink, locale, and requested version. Empty values are ignored.
func WithRequestContext(logger interfaces.Logger, permalink, locale, version string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(permalink); trimmed != "" {
		fields[fieldPermalink] = trimmed
	}
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		fields[fieldLocale] = trimmed
	}
	if trimmed := strings.TrimSpace(version); trimmed != "" {
		fields[fieldVersion] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every log entry. It satisfies the Logger
// contract so services can safely operate when logging is disabled.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
