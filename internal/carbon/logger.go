package carbon

import "github.com/rs/zerolog"

// logger is used for factor table loading diagnostics. It discards output
// until SetLogger is called.
var logger = zerolog.Nop()

// SetLogger sets the package logger. Call it once during startup, before
// any estimator is constructed.
func SetLogger(l zerolog.Logger) {
	logger = l.With().Str("component", "carbon").Logger()
}
