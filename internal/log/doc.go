// Package log provides slog loggers that never print GitHub credentials.
//
// SecureHandler wraps any slog.Handler. It masks attributes whose key looks
// sensitive (authorization, token, password, ...), string values that look
// like an auth header or JWT, and GitHub tokens (ghp_, gho_, ghu_, ghs_, ghr_,
// github_pat_) found anywhere in the message, a string attribute or an error.
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Info("authenticated", "login", "octocat", "token", token) // token=***REDACTED***
package log
