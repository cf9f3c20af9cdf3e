package logger

// Global convenience functions for call sites that have no context value.
// Context-aware variants live in context.go.

func Debug(msg string, args ...interface{}) {
	GetGlobalLogger().CoreLogger.Debug(msg, args...)
}

func Info(msg string, args ...interface{}) {
	GetGlobalLogger().CoreLogger.Info(msg, args...)
}

func Warn(msg string, args ...interface{}) {
	GetGlobalLogger().CoreLogger.Warn(msg, args...)
}

func Error(msg string, args ...interface{}) {
	GetGlobalLogger().CoreLogger.Error(msg, args...)
}

// Fatal logs and exits. Only used during startup wiring.
func Fatal(msg string, args ...interface{}) {
	GetGlobalLogger().CoreLogger.Fatal(msg, args...)
}

func InfoWithFields(msg string, fields map[string]interface{}) {
	GetGlobalLogger().CoreLogger.InfoWithFields(msg, fields)
}

func ErrorWithFields(msg string, fields map[string]interface{}) {
	GetGlobalLogger().CoreLogger.ErrorWithFields(msg, fields)
}
