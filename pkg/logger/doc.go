// Package logger builds the *slog.Logger used across the service.
//
// New takes functional options: output format, level, static attributes and
// ContextExtractor callbacks that copy request-scoped values (request id, user
// id) from context.Context into every record. WithEnvironment picks defaults
// for an APP_ENV value: text at debug level for development, JSON at info
// level for staging and production, with "service" and "env" attached.
//
//	log := logger.New(
//		logger.WithEnvironment(cfg.Env, cfg.Name),
//		logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	log.WarnContext(ctx, "login rejected",
//		logger.Component("auth"),
//		logger.Email(email),
//		logger.Error(err),
//	)
//
// Helpers in attr.go keep attribute keys consistent. Error, UserID and Email
// return an empty attribute for a nil or empty value, which slog drops.
package logger
