// Package logger provides structured logging functionality for the application.
//
// It utilizes Go's standard library log/slog package to implement structured JSON logging
// with configurable log levels. Request-scoped loggers travel in the context.Context;
// components fetch them with FromContextOrDefault so that trace identifiers added by the
// HTTP middleware show up in store and service logs.
package logger
