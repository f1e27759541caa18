package log

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"github.com/mwantia/fabric/pkg/container"
)

// FromContainer resolves a logger from the service container by tag.
//
// Supported tag formats:
//   - "logger" - the base logger service
//   - "logger:<name>" - a named logger (e.g., logger.Named("upload"))
//
// All matching is case-insensitive.
func FromContainer(ctx context.Context, sc *container.ServiceContainer, tag string) (LoggerService, error) {
	if !IsLoggerTag(tag) {
		return nil, fmt.Errorf("unsupported logger tag '%s'", tag)
	}

	ok, resolved := sc.ResolveByType(ctx, reflect.TypeOf((*LoggerService)(nil)).Elem())
	if !ok {
		return nil, fmt.Errorf("failed to resolve LoggerService for '%s': no logger service registered", tag)
	}

	baseLogger, ok := resolved.(LoggerService)
	if !ok {
		return nil, fmt.Errorf("resolved logger is not a LoggerService for '%s'", tag)
	}

	// Parse the tag value to extract the logger name
	loggerName := ""
	if parts := strings.SplitN(tag, ":", 2); len(parts) == 2 {
		loggerName = strings.TrimSpace(parts[1])
	}

	if loggerName != "" {
		return baseLogger.Named(loggerName), nil
	}

	return baseLogger, nil
}

// IsLoggerTag reports whether tag is "logger" or "logger:<name>".
func IsLoggerTag(tag string) bool {
	return strings.EqualFold(tag, "logger") || strings.HasPrefix(strings.ToLower(tag), "logger:")
}
