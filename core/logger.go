package core

// Identity is the authenticated caller, as provided by the auth gate.
type Identity struct {
	ID       string
	Username string
	Email    string
}

func (id Identity) IsZero() bool { return id.ID == "" }

// Logger is any structured logger the app can report to.
// expected args: error, map[string]interface{}, Identity
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
