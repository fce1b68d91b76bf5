// Package logger configures the application's slog logger and carries
// request-scoped loggers through context.Context.
package logger
