package ports

// Logger is the structured logger the Fonepay adapter writes to.
// Field values must never carry the merchant secret key.
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
}

// Field is a key/value pair attached to a log entry
type Field struct {
	Key   string
	Value interface{}
}

func String(key, val string) Field {
	return Field{Key: key, Value: val}
}

func Bool(key string, val bool) Field {
	return Field{Key: key, Value: val}
}

// Err attaches err under the "error" key
func Err(err error) Field {
	return Field{Key: "error", Value: err}
}
