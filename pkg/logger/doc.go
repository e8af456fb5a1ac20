// Package logger builds the structured *slog.Logger used across uploadkit.
//
// New assembles a text or JSON slog handler from functional options, attaches
// static attributes and wraps the result in a decorator that pulls request-scoped
// values out of context.Context on every call:
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, "uploader"),
//		logger.WithContextExtractors(requestIDFromContext),
//	)
//	log.InfoContext(ctx, "upload stored",
//		logger.Input("file"),
//		logger.Destination(dst),
//	)
//
// Attribute helpers (Component, Error, Errors, Group, Input, Filename, Destination, MIMEType,
// Size, Step) keep key names identical in process logs and upload audit logs.
// Nop returns a logger that discards everything and is the default wherever a
// logger is optional.
package logger
