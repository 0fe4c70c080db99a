package logger

import (
	"context"
	"log/slog"
)

// nopHandler drops every record.
type nopHandler struct{}

// Nop returns a *slog.Logger that discards all output. Useful as a default
// in constructors and in tests that don't assert on logs.
func Nop() *slog.Logger {
	return slog.New(nopHandler{})
}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (n nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return n }
func (n nopHandler) WithGroup(string) slog.Handler           { return n }
