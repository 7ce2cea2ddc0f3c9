package httpcore

import "go.uber.org/zap"

// connection lifecycle and body-drain events are logged through a
// *zap.Logger threaded in via ConnectionConfig, defaulting to a no-op
// logger so the module stays silent unless a caller opts in.
func defaultLogger() *zap.Logger {
	return zap.NewNop()
}
