package core

// Logger is the app-wide logging interface.
// Implementations may inspect args for known types (eg. the acting user)
// and forward the rest to their backend.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Error(msg string, err error, args ...interface{})
	Fatal(msg string, err error, args ...interface{})
}
